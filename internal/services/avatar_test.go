package services_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storelane/internal/services"
)

func TestGenerateAvatarProducesPNG(t *testing.T) {
	data, err := services.GenerateAvatar("John", "Doe")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())
}

func TestGenerateAvatarDeterministic(t *testing.T) {
	first, err := services.GenerateAvatar("John", "Doe")
	require.NoError(t, err)
	second, err := services.GenerateAvatar("John", "Doe")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateAvatarHandlesMissingNames(t *testing.T) {
	data, err := services.GenerateAvatar("", "")
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/storelane/internal/utils"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Black Shirt", "Black-Shirt"},
		{"  Black Shirt  ", "Black-Shirt"},
		{"Shirt", "Shirt"},
		{"A B C", "A-B-C"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, utils.Slugify(tt.title))
	}
}

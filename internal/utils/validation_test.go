package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storelane/internal/utils"
)

type sampleRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Confirm  string  `json:"password_confirmation" validate:"required,eqfield=Password"`
	Role     string  `json:"role" validate:"omitempty,oneof=admin agent customer"`
	Price    float64 `json:"price" validate:"omitempty,gt=0"`
}

func TestValidateStructValid(t *testing.T) {
	errs := utils.ValidateStruct(sampleRequest{
		Email:    "u@x.com",
		Password: "secret123",
		Confirm:  "secret123",
		Role:     "customer",
	})
	assert.Nil(t, errs)
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	errs := utils.ValidateStruct(sampleRequest{
		Password: "secret123",
		Confirm:  "different",
	})
	require.NotNil(t, errs)

	// Keys are the json tag names, not the Go field names.
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password_confirmation")
	assert.NotContains(t, errs, "Email")
	assert.NotContains(t, errs, "Confirm")
}

func TestValidateStructMessages(t *testing.T) {
	errs := utils.ValidateStruct(sampleRequest{
		Email:    "not-an-email",
		Password: "short",
		Confirm:  "short",
		Role:     "superuser",
		Price:    -1,
	})
	require.NotNil(t, errs)

	assert.Equal(t, "Invalid email format", errs["email"])
	assert.Equal(t, "Minimum length is 8", errs["password"])
	assert.Equal(t, "Must be one of: admin, agent, customer", errs["role"])
	assert.Equal(t, "Must be greater than 0", errs["price"])
}

package validation

import (
	"testing"

	apperrors "github.com/lalith-99/clientdesk/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Level string `json:"level" validate:"oneof=Lead Customer"`
	Note  string `validate:"max=3"`
}

func TestValidateOK(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(sample{Name: "Ana", Level: "Lead"}))
}

func TestValidateUsesJSONNames(t *testing.T) {
	v := New()

	err := v.Validate(sample{Name: "", Level: "VIP", Note: "toolong"})
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)

	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be one of: Lead Customer", details["level"])
	assert.Equal(t, "must not exceed 3 characters", details["Note"])
}

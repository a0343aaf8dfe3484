package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cadence/internal/platform/errors"
	"cadence/internal/platform/validate"
)

type sample struct {
	Name  string `json:"name" validate:"required,max=10"`
	Day   string `json:"day" validate:"datekey"`
	Total int    `json:"total" validate:"min=0"`
}

func TestStructAcceptsValidInput(t *testing.T) {
	t.Parallel()
	require.NoError(t, validate.Struct(sample{Name: "math", Day: "2024-01-01"}))
	require.NoError(t, validate.Struct(sample{Name: "math"}))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	t.Parallel()
	err := validate.Struct(sample{Day: "01/02/2024", Total: -1})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "day must be a YYYY-MM-DD date")
	assert.Contains(t, err.Error(), "total must be at least 0")
}

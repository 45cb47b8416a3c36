package utils

import (
	"testing"

	pkgerrors "casegraph/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	EmployeeID string `validate:"required,max=8"`
	Limit      int    `validate:"min=1"`
	Driver     string `validate:"oneof=memory redis"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sample{EmployeeID: "E-1", Limit: 1, Driver: "memory"}))

	err := ValidateStruct(sample{Limit: 0, Driver: "disk"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "employeeid is required")
	assert.Contains(t, err.Error(), "limit must be at least 1")
	assert.Contains(t, err.Error(), "driver must be one of: memory redis")
}

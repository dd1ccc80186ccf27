package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Distinct(t *testing.T) {
	errs := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrRunInProgress,
		ErrStructural,
		ErrMetricUnavailable,
		ErrStoreUnavailable,
		ErrUnknownSource,
		ErrAuthRequired,
		ErrAuthInvalid,
		ErrRateLimited,
	}

	for i, a := range errs {
		assert.NotEmpty(t, a.Error())
		for j, b := range errs {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestStructuralError(t *testing.T) {
	err := &StructuralError{Section: "beta", Offset: 42, Reason: "table terminator not found"}

	assert.True(t, errors.Is(err, ErrStructural))
	assert.Contains(t, err.Error(), `"beta"`)
	assert.Contains(t, err.Error(), "offset 42")
	assert.Contains(t, err.Error(), "table terminator not found")
}

func TestStructuralError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("apply rows: %w", &StructuralError{Section: "a"})

	var target *StructuralError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "a", target.Section)
	assert.True(t, errors.Is(wrapped, ErrStructural))
	assert.False(t, errors.Is(wrapped, ErrMetricUnavailable))
}

package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeValidation, "gender is required")
		assert.True(t, HasCode(err, CodeValidation))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("submit: %w", New(CodeConflict, "attempt in flight"))
		assert.True(t, Is(err, CodeConflict))
	})

	t.Run("matches inner coded error", func(t *testing.T) {
		inner := New(CodeNotFound, "profile missing")
		err := Wrap(inner, CodeInternal, "load failed")
		assert.True(t, HasCode(err, CodeInternal))
		assert.True(t, HasCode(err, CodeNotFound))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(cause, CodeUnavailable, "profile api unreachable")

	assert.Equal(t, "service_unavailable: profile api unreachable: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

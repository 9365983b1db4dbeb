package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Run("NilError", func(t *testing.T) {
		assert.False(t, IsNotFoundError(nil))
	})

	t.Run("SentinelError", func(t *testing.T) {
		assert.True(t, IsNotFoundError(ErrNotFound))
	})

	t.Run("WrappedSentinel", func(t *testing.T) {
		err := fmt.Errorf("failed to delete trigger: %w", ErrNotFound)
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("UnrelatedError", func(t *testing.T) {
		assert.False(t, IsNotFoundError(errors.New("connection refused")))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("ErrorMessageIncludesField", func(t *testing.T) {
		err := NewValidationError("emoji", "unexpected key")
		assert.Equal(t, "emoji: unexpected key", err.Error())
	})

	t.Run("ErrorMessageWithoutField", func(t *testing.T) {
		err := &ValidationError{Message: "activation params cannot be empty"}
		assert.Equal(t, "activation params cannot be empty", err.Error())
	})

	t.Run("IsValidationError", func(t *testing.T) {
		err := NewValidationError("match_statement", "missing required key")
		assert.True(t, IsValidationError(err))

		wrapped := fmt.Errorf("failed to create trigger: %w", err)
		assert.True(t, IsValidationError(wrapped))

		assert.False(t, IsValidationError(errors.New("boom")))
		assert.False(t, IsValidationError(nil))
	})
}

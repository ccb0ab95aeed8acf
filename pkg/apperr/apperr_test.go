package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	t.Run("direct error", func(t *testing.T) {
		err := NotFound("user with ID 7 not found")
		assert.Equal(t, CodeNotFound, CodeOf(err))
		assert.True(t, IsNotFound(err))
	})

	t.Run("code survives wrapping", func(t *testing.T) {
		inner := Unavailable("read user", errors.New("connection refused"))
		outer := fmt.Errorf("list conversations: %w", inner)
		assert.Equal(t, CodeUnavailable, CodeOf(outer))
	})

	t.Run("plain error has no code", func(t *testing.T) {
		assert.Equal(t, CodeUnknown, CodeOf(errors.New("boom")))
		assert.False(t, IsNotFound(errors.New("boom")))
	})

	t.Run("nil-safe", func(t *testing.T) {
		assert.Equal(t, CodeUnknown, CodeOf(nil))
	})
}

func TestAppErrorMessage(t *testing.T) {
	err := NotFoundf("sender with ID %d not found", 42)
	assert.Equal(t, "sender with ID 42 not found", err.Error())

	wrapped := Unavailable("increment counter", errors.New("timeout"))
	assert.Equal(t, "increment counter: timeout", wrapped.Error())

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "timeout", appErr.Unwrap().Error())
}

package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserErrorUnwrapsAndFormats(t *testing.T) {
	err := NewUserError("could not load configuration", ErrMissingConfig)

	assert.ErrorIs(t, err, ErrMissingConfig)
	assert.Contains(t, err.Error(), "could not load configuration")

	var userErr *UserError
	assert.ErrorAs(t, err, &userErr)
	assert.Equal(t, "could not load configuration", userErr.UserMessage)
}

func TestUserErrorWithoutCause(t *testing.T) {
	err := NewUserError("nothing to do", nil)
	assert.Equal(t, "nothing to do", err.Error())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", ErrRateLimit, true},
		{"wrapped rate limit", fmt.Errorf("llm: %w", ErrRateLimit), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"marked retryable", &RetryableError{Err: errors.New("flaky"), Retryable: true}, true},
		{"marked permanent", &RetryableError{Err: errors.New("bad request"), Retryable: false}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

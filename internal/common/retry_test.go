package common

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type tempErr struct{}

func (tempErr) Error() string   { return "temporary" }
func (tempErr) Temporary() bool { return true }

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("auth failed")

	err := WithRetry(context.Background(), func(context.Context) error {
		calls++
		return permanent
	}, 3)

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRetriesTemporaryError(t *testing.T) {
	calls := 0

	err := WithRetry(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return tempErr{}
		}
		return nil
	}, 3)

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func(context.Context) error { return tempErr{} }, 3)

	assert.ErrorIs(t, err, context.Canceled)
}

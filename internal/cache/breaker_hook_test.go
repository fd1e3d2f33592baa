package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func process(h *BreakerHook, err error) error {
	ctx := context.Background()
	hook := h.ProcessHook(func(ctx context.Context, cmd redis.Cmder) error {
		return err
	})
	return hook(ctx, redis.NewStringCmd(ctx, "get", "key"))
}

func TestBreakerHookStaysClosedOnSuccess(t *testing.T) {
	hook := NewBreakerHook(zaptest.NewLogger(t))

	for i := 0; i < 10; i++ {
		assert.NoError(t, process(hook, nil))
	}

	assert.Equal(t, gobreaker.StateClosed, hook.State())
	assert.Equal(t, uint32(10), hook.Counts().TotalSuccesses)
}

func TestBreakerHookTreatsMissAsSuccess(t *testing.T) {
	hook := NewBreakerHook(zaptest.NewLogger(t))

	for i := 0; i < 6; i++ {
		assert.ErrorIs(t, process(hook, redis.Nil), redis.Nil)
	}

	assert.Equal(t, gobreaker.StateClosed, hook.State())
}

func TestBreakerHookOpensAfterConsecutiveFailures(t *testing.T) {
	hook := NewBreakerHook(zaptest.NewLogger(t))
	timeout := errors.New("i/o timeout")

	for i := 0; i < 4; i++ {
		assert.ErrorIs(t, process(hook, timeout), timeout)
	}
	assert.Equal(t, gobreaker.StateClosed, hook.State())

	assert.Error(t, process(hook, timeout))
	assert.Equal(t, gobreaker.StateOpen, hook.State())

	called := false
	ctx := context.Background()
	err := hook.ProcessHook(func(context.Context, redis.Cmder) error {
		called = true
		return nil
	})(ctx, redis.NewStringCmd(ctx, "get", "key"))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called)
}

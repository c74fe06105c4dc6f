package objectstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pxl/internal/logging"
)

// RetryPolicy configures retry behavior for gateway operations.
type RetryPolicy struct {
	// MaxRetries is the maximum number of retry attempts (0 means no retries).
	MaxRetries int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration
	// BackoffMultiplier is the factor by which the backoff grows each retry.
	BackoffMultiplier float64
}

// DefaultRetryPolicy returns the policy used for remote buckets.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		InitialBackoff:    200 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// WithRetry wraps gw so that ErrRemoteIO failures are retried with
// exponential backoff. ErrNotFound and ErrPrecondition are returned at once.
// When gw supports create-only writes the result does too; PutIfAbsent is
// never retried because a lost response would turn our own write into a
// precondition failure.
func WithRetry(gw Gateway, policy RetryPolicy, logger *slog.Logger) Gateway {
	r := &retryGateway{inner: gw, policy: policy, logger: logging.NewComponentLogger(logger, "objectstore")}
	if cp, ok := gw.(ConditionalPutter); ok {
		return &retryConditionalGateway{retryGateway: r, cp: cp}
	}
	return r
}

type retryGateway struct {
	inner  Gateway
	policy RetryPolicy
	logger *slog.Logger
}

type retryConditionalGateway struct {
	*retryGateway
	cp ConditionalPutter
}

func (g *retryConditionalGateway) PutIfAbsent(ctx context.Context, key string, data []byte, opts PutOptions) error {
	return g.cp.PutIfAbsent(ctx, key, data, opts)
}

func (g *retryGateway) Get(ctx context.Context, key string) ([]byte, error) {
	var result []byte
	err := g.retry(ctx, "get", key, func() error {
		var err error
		result, err = g.inner.Get(ctx, key)
		return err
	})
	return result, err
}

func (g *retryGateway) Put(ctx context.Context, key string, data []byte, opts PutOptions) error {
	return g.retry(ctx, "put", key, func() error {
		return g.inner.Put(ctx, key, data, opts)
	})
}

func (g *retryGateway) Delete(ctx context.Context, keys ...string) error {
	var key string
	if len(keys) > 0 {
		key = keys[0]
	}
	return g.retry(ctx, "delete", key, func() error {
		return g.inner.Delete(ctx, keys...)
	})
}

func (g *retryGateway) List(ctx context.Context, prefix string) ([]string, error) {
	var result []string
	err := g.retry(ctx, "list", prefix, func() error {
		var err error
		result, err = g.inner.List(ctx, prefix)
		return err
	})
	return result, err
}

func (g *retryGateway) retry(ctx context.Context, op, key string, fn func() error) error {
	backoff := g.policy.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= g.policy.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil || !errors.Is(lastErr, ErrRemoteIO) {
			return lastErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == g.policy.MaxRetries {
			break
		}

		g.logger.Debug("store operation failed, retrying",
			"op", op,
			"key", key,
			"attempt", attempt+1,
			"max_retries", g.policy.MaxRetries,
			"backoff", backoff,
			logging.Error(lastErr),
		)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * g.policy.BackoffMultiplier)
		if g.policy.MaxBackoff > 0 && backoff > g.policy.MaxBackoff {
			backoff = g.policy.MaxBackoff
		}
	}
	return lastErr
}

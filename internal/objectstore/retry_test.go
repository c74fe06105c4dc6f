package objectstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pxl/internal/objectstore"
	"pxl/internal/testsupport"
)

func fastPolicy() objectstore.RetryPolicy {
	return objectstore.RetryPolicy{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, BackoffMultiplier: 2}
}

func TestRetryRecoversFromRemoteIO(t *testing.T) {
	inner := testsupport.NewGateway()
	failures := 2
	inner.Fail = func(op, key string) error {
		if op == "put" && failures > 0 {
			failures--
			return objectstore.ErrRemoteIO
		}
		return nil
	}
	gw := objectstore.WithRetry(inner, fastPolicy(), nil)

	if err := gw.Put(context.Background(), "state.json", []byte("{}"), objectstore.PutOptions{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got := inner.CountCalls("put"); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestRetryGivesUp(t *testing.T) {
	inner := testsupport.NewGateway()
	inner.Fail = func(op, key string) error { return objectstore.ErrRemoteIO }
	gw := objectstore.WithRetry(inner, fastPolicy(), nil)

	if _, err := gw.List(context.Background(), ""); !errors.Is(err, objectstore.ErrRemoteIO) {
		t.Fatalf("expected ErrRemoteIO, got %v", err)
	}
	if got := inner.CountCalls("list"); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestRetrySkipsNotFound(t *testing.T) {
	inner := testsupport.NewGateway()
	gw := objectstore.WithRetry(inner, fastPolicy(), nil)

	if _, err := gw.Get(context.Background(), "state.json"); !errors.Is(err, objectstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := inner.CountCalls("get"); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestRetryPreservesConditionalPuts(t *testing.T) {
	plain := objectstore.WithRetry(testsupport.NewGateway(), fastPolicy(), nil)
	if _, ok := plain.(objectstore.ConditionalPutter); ok {
		t.Fatalf("plain gateway must not gain PutIfAbsent")
	}

	inner := testsupport.NewGateway()
	gw := objectstore.WithRetry(inner.AsConditional(), fastPolicy(), nil)
	cp, ok := gw.(objectstore.ConditionalPutter)
	if !ok {
		t.Fatalf("conditional gateway lost PutIfAbsent")
	}
	ctx := context.Background()
	if err := cp.PutIfAbsent(ctx, "lock.json", []byte("a"), objectstore.PutOptions{}); err != nil {
		t.Fatalf("PutIfAbsent: %v", err)
	}
	if err := cp.PutIfAbsent(ctx, "lock.json", []byte("b"), objectstore.PutOptions{}); !errors.Is(err, objectstore.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	inner := testsupport.NewGateway()
	ctx, cancel := context.WithCancel(context.Background())
	inner.Fail = func(op, key string) error {
		cancel()
		return objectstore.ErrRemoteIO
	}
	gw := objectstore.WithRetry(inner, fastPolicy(), nil)
	if err := gw.Delete(ctx, "lock.json"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

package testsupport

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"pxl/internal/objectstore"
)

// Object is a stored entry in Gateway.
type Object struct {
	Data []byte
	Opts objectstore.PutOptions
}

// Gateway is an in-memory objectstore.Gateway for tests. It records every
// call, can fail selected operations, and can pause between a lock check and
// the write that follows it to reproduce the list-then-put race.
type Gateway struct {
	mu      sync.Mutex
	objects map[string]Object
	calls   []string

	// Conditional makes the gateway satisfy objectstore.ConditionalPutter
	// through AsConditional.
	Conditional bool

	// AfterList runs after every List call, outside the gateway mutex.
	AfterList func(prefix string)
	// Fail returns an error to inject for the named operation ("get", "put",
	// "delete", "list") on key, or nil.
	Fail func(op, key string) error
}

var _ objectstore.Gateway = (*Gateway)(nil)

// NewGateway returns an empty in-memory gateway.
func NewGateway() *Gateway {
	return &Gateway{objects: map[string]Object{}}
}

func (g *Gateway) record(op, key string) error {
	g.mu.Lock()
	g.calls = append(g.calls, op+" "+key)
	fail := g.Fail
	g.mu.Unlock()
	if fail != nil {
		return fail(op, key)
	}
	return nil
}

func (g *Gateway) Get(_ context.Context, key string) ([]byte, error) {
	if err := g.record("get", key); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	obj, ok := g.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", objectstore.ErrNotFound, key)
	}
	return append([]byte(nil), obj.Data...), nil
}

func (g *Gateway) Put(_ context.Context, key string, data []byte, opts objectstore.PutOptions) error {
	if err := g.record("put", key); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.objects[key] = Object{Data: append([]byte(nil), data...), Opts: opts}
	return nil
}

func (g *Gateway) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		if err := g.record("delete", key); err != nil {
			return err
		}
		g.mu.Lock()
		delete(g.objects, key)
		g.mu.Unlock()
	}
	return nil
}

func (g *Gateway) List(_ context.Context, prefix string) ([]string, error) {
	if err := g.record("list", prefix); err != nil {
		return nil, err
	}
	g.mu.Lock()
	var keys []string
	for key := range g.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	hook := g.AfterList
	g.mu.Unlock()
	sort.Strings(keys)
	if hook != nil {
		hook(prefix)
	}
	return keys, nil
}

// AsConditional returns a view of g that also implements
// objectstore.ConditionalPutter.
func (g *Gateway) AsConditional() *ConditionalGateway {
	return &ConditionalGateway{Gateway: g}
}

// Object returns a stored object.
func (g *Gateway) Object(key string) (Object, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	obj, ok := g.objects[key]
	return obj, ok
}

// Keys returns every stored key, sorted.
func (g *Gateway) Keys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	keys := make([]string, 0, len(g.objects))
	for key := range g.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Calls returns the recorded operations as "op key" strings.
func (g *Gateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

// CountCalls returns how many recorded operations used op.
func (g *Gateway) CountCalls(op string) int {
	n := 0
	for _, call := range g.Calls() {
		if strings.HasPrefix(call, op+" ") {
			n++
		}
	}
	return n
}

// Seed stores data without recording a call.
func (g *Gateway) Seed(key string, data []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.objects[key] = Object{Data: append([]byte(nil), data...)}
}

// ConditionalGateway adds create-only writes to Gateway.
type ConditionalGateway struct {
	*Gateway
}

var _ objectstore.ConditionalPutter = (*ConditionalGateway)(nil)

func (g *ConditionalGateway) PutIfAbsent(_ context.Context, key string, data []byte, opts objectstore.PutOptions) error {
	if err := g.record("put-if-absent", key); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.objects[key]; exists {
		return fmt.Errorf("%w: %s", objectstore.ErrPrecondition, key)
	}
	g.objects[key] = Object{Data: append([]byte(nil), data...), Opts: opts}
	return nil
}

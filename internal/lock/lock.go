package lock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"time"

	"pxl/internal/logging"
	"pxl/internal/objectstore"
)

// Key is the bucket key of the lock object.
const Key = "lock.json"

// ErrLockHeld indicates another client holds the lock.
var ErrLockHeld = errors.New("lock held by another client")

// Lock records who holds the advisory lock and since when.
type Lock struct {
	User      string    `json:"user"`
	Hostname  string    `json:"hostname"`
	StartTime time.Time `json:"start_time"`
}

// String renders the holder for humans, e.g. "alice@studio since 2018-01-25T14:03:09Z".
func (l Lock) String() string {
	return fmt.Sprintf("%s@%s since %s", l.User, l.Hostname, l.StartTime.Format(time.RFC3339))
}

// HeldError carries the current holder when it could be read.
type HeldError struct {
	Holder *Lock
}

func (e *HeldError) Error() string {
	if e.Holder == nil {
		return ErrLockHeld.Error()
	}
	return fmt.Sprintf("%s (%s)", ErrLockHeld, e.Holder)
}

// Is reports ErrLockHeld as the error kind.
func (e *HeldError) Is(target error) bool {
	return target == ErrLockHeld
}

// Identity reports the current user and hostname.
type Identity func() (user, hostname string)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for acquisition and release events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logging.NewComponentLogger(logger, "lock")
	}
}

// WithClock overrides the clock used for StartTime.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIdentity overrides how the holder identity is determined.
func WithIdentity(identity Identity) Option {
	return func(m *Manager) {
		if identity != nil {
			m.identity = identity
		}
	}
}

// Manager acquires and inspects the advisory lock.
type Manager struct {
	gw       objectstore.Gateway
	logger   *slog.Logger
	now      func() time.Time
	identity Identity
}

// NewManager returns a Manager storing the lock through gw.
func NewManager(gw objectstore.Gateway, opts ...Option) *Manager {
	m := &Manager{
		gw:       gw,
		logger:   logging.NewComponentLogger(nil, "lock"),
		now:      time.Now,
		identity: systemIdentity,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle is a held lock. Release it exactly once when done; further calls
// are no-ops.
type Handle struct {
	manager  *Manager
	lock     Lock
	released bool
}

// Lock returns the record written on acquisition.
func (h *Handle) Lock() Lock {
	return h.lock
}

// Acquire writes lock.json. When breakLock is false and another client holds
// the lock, it returns a *HeldError without writing anything. When breakLock
// is true an existing lock is overwritten regardless of its owner.
func (m *Manager) Acquire(ctx context.Context, breakLock bool) (*Handle, error) {
	user, host := m.identity()
	record := Lock{User: user, Hostname: host, StartTime: m.now().Truncate(time.Second)}
	data, err := encode(record)
	if err != nil {
		return nil, err
	}

	if cp, ok := m.gw.(objectstore.ConditionalPutter); ok && !breakLock {
		if err := cp.PutIfAbsent(ctx, Key, data, putOptions()); err != nil {
			if errors.Is(err, objectstore.ErrPrecondition) {
				return nil, m.held(ctx)
			}
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		m.logger.Debug("lock acquired", "mode", "conditional", "user", user, "hostname", host)
		return &Handle{manager: m, lock: record}, nil
	}

	exists, err := objectstore.Exists(ctx, m.gw, Key)
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if exists {
		if !breakLock {
			return nil, m.held(ctx)
		}
		previous, inspectErr := m.Inspect(ctx)
		if inspectErr == nil {
			m.logger.Warn("breaking existing lock",
				"holder_user", previous.User,
				"holder_hostname", previous.Hostname,
				"holder_since", previous.StartTime.Format(time.RFC3339),
			)
		} else {
			m.logger.Warn("breaking existing lock with unreadable holder", logging.Error(inspectErr))
		}
	}

	if err := m.gw.Put(ctx, Key, data, putOptions()); err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	m.logger.Debug("lock acquired", "mode", "list-then-put", "user", user, "hostname", host)
	return &Handle{manager: m, lock: record}, nil
}

// Release deletes lock.json. It is safe to call on a nil or already
// released handle.
func (h *Handle) Release(ctx context.Context) error {
	if h == nil || h.released {
		return nil
	}
	if err := h.manager.gw.Delete(ctx, Key); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	h.released = true
	h.manager.logger.Debug("lock released")
	return nil
}

// Inspect reads the current lock. It returns objectstore.ErrNotFound when
// nobody holds it.
func (m *Manager) Inspect(ctx context.Context) (*Lock, error) {
	data, err := m.gw.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("inspect lock: %w", err)
	}
	var record Lock
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("inspect lock: decode %s: %w", Key, err)
	}
	return &record, nil
}

// Break deletes lock.json without acquiring it.
func (m *Manager) Break(ctx context.Context) error {
	if err := m.gw.Delete(ctx, Key); err != nil {
		return fmt.Errorf("break lock: %w", err)
	}
	m.logger.Warn("lock broken")
	return nil
}

// WithLock runs fn while holding the lock. The lock is released on every
// exit path, including cancellation of ctx; a release failure is joined with
// fn's error.
func WithLock(ctx context.Context, m *Manager, breakLock bool, fn func(context.Context) error) (err error) {
	handle, err := m.Acquire(ctx, breakLock)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := handle.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()
	return fn(ctx)
}

func (m *Manager) held(ctx context.Context) error {
	holder, err := m.Inspect(ctx)
	if err != nil {
		m.logger.Debug("lock holder unreadable", logging.Error(err))
		return &HeldError{}
	}
	return &HeldError{Holder: holder}
}

func encode(record Lock) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode lock: %w", err)
	}
	return data, nil
}

func putOptions() objectstore.PutOptions {
	return objectstore.PutOptions{ContentType: objectstore.ContentTypeJSON, ACL: objectstore.ACLPrivate}
}

func systemIdentity() (string, string) {
	name := "unknown"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	} else if env := os.Getenv("USER"); env != "" {
		name = env
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return name, host
}

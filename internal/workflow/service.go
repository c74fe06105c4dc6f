package workflow

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pxl/internal/catalog"
	"pxl/internal/config"
	"pxl/internal/lock"
	"pxl/internal/logging"
	"pxl/internal/objectstore"
	"pxl/internal/publish"
)

// Service runs pxl workflows against one object store.
type Service struct {
	cfg       *config.Config
	gw        objectstore.Gateway
	base      *slog.Logger
	logger    *slog.Logger
	locks     *lock.Manager
	catalog   *catalog.Store
	publisher *publish.Publisher
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	now      func() time.Time
	newID    func() uuid.UUID
	identity lock.Identity
}

// WithClock overrides the clock used for album creation and lock records.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		o.now = now
	}
}

// WithIDGenerator overrides image identifier generation.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(o *serviceOptions) {
		o.newID = newID
	}
}

// WithIdentity overrides the lock holder identity.
func WithIdentity(identity lock.Identity) Option {
	return func(o *serviceOptions) {
		o.identity = identity
	}
}

// New constructs a Service. cfg is read, never modified.
func New(cfg *config.Config, gw objectstore.Gateway, logger *slog.Logger, opts ...Option) *Service {
	options := serviceOptions{now: time.Now}
	for _, opt := range opts {
		opt(&options)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Service{
		cfg:    cfg,
		gw:     gw,
		base:   logger,
		logger: logging.NewComponentLogger(logger, "workflow"),
		locks: lock.NewManager(gw,
			lock.WithLogger(logger),
			lock.WithClock(options.now),
			lock.WithIdentity(options.identity),
		),
		catalog: catalog.NewStore(gw, logger),
		publisher: publish.NewPublisher(gw, publish.Options{
			Variants:    cfg.Upload.Variants,
			Concurrency: cfg.Upload.Concurrency,
			Logger:      logger,
			NewID:       options.newID,
		}),
		now: options.now,
	}
}

// Catalog exposes the catalog store for read-only commands.
func (s *Service) Catalog() *catalog.Store {
	return s.catalog
}

// Locks exposes the lock manager for inspection and explicit breaking.
func (s *Service) Locks() *lock.Manager {
	return s.locks
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pxl/internal/logging"
	"pxl/internal/objectstore"
)

// StateKey is the bucket key of the catalog document.
const StateKey = "state.json"

// Store fetches and persists the catalog. It does not lock; mutating callers
// must hold the advisory lock around Fetch and Persist.
type Store struct {
	gw     objectstore.Gateway
	logger *slog.Logger
}

// NewStore returns a Store backed by gw.
func NewStore(gw objectstore.Gateway, logger *slog.Logger) *Store {
	return &Store{gw: gw, logger: logging.NewComponentLogger(logger, "catalog")}
}

// Fetch reads the current catalog. A missing document yields an empty
// catalog so first use needs no bootstrap step.
func (s *Store) Fetch(ctx context.Context) (Overview, error) {
	data, err := s.gw.Get(ctx, StateKey)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			s.logger.Info("no remote catalog yet; starting empty", "key", StateKey)
			return Empty(), nil
		}
		return Overview{}, fmt.Errorf("fetch catalog: %w", err)
	}
	overview, err := Decode(data)
	if err != nil {
		return Overview{}, fmt.Errorf("fetch catalog: %w", err)
	}
	s.logger.Debug("catalog fetched", "albums", len(overview.Albums), "images", overview.ImageCount())
	return overview, nil
}

// Persist replaces the remote catalog with overview as a private object.
func (s *Store) Persist(ctx context.Context, overview Overview) error {
	data, err := Encode(overview)
	if err != nil {
		return err
	}
	if err := s.gw.Put(ctx, StateKey, data, objectstore.PutOptions{
		ContentType: objectstore.ContentTypeJSON,
		ACL:         objectstore.ACLPrivate,
	}); err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}
	s.logger.Info("catalog persisted", "albums", len(overview.Albums), "images", overview.ImageCount())
	return nil
}

package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"pxl/internal/catalog"
	"pxl/internal/logging"
	"pxl/internal/site"
)

// ErrBuildInProgress is returned when another local build holds the output
// directory.
var ErrBuildInProgress = errors.New("another build is writing the output directory")

const buildLockName = ".pxl-build.lock"

// BuildRequest describes one site build.
type BuildRequest struct {
	OutputDir string
	DesignDir string
}

// BuildResult summarizes a finished build.
type BuildResult struct {
	OutputDir string
	Overview  catalog.Overview
}

// Build fetches the catalog without taking the remote lock and renders the
// site into req.OutputDir.
func (s *Service) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	output := req.OutputDir
	if output == "" {
		output = s.cfg.Site.OutputDir
	}
	design := req.DesignDir
	if design == "" {
		design = s.cfg.Site.DesignDir
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return BuildResult{}, fmt.Errorf("resolve output dir: %w", err)
	}

	parent := filepath.Dir(abs)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return BuildResult{}, fmt.Errorf("prepare output parent: %w", err)
	}
	fileLock := flock.New(filepath.Join(parent, buildLockName))
	locked, err := fileLock.TryLock()
	if err != nil {
		return BuildResult{}, fmt.Errorf("acquire build lock: %w", err)
	}
	if !locked {
		return BuildResult{}, fmt.Errorf("%w: %s", ErrBuildInProgress, abs)
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			s.logger.Warn("release build lock", logging.Error(err))
		}
	}()

	overview, err := s.catalog.Fetch(ctx)
	if err != nil {
		return BuildResult{}, err
	}
	if len(overview.Albums) == 0 {
		s.logger.Warn("catalog has no albums; upload before building to get a populated site")
	}

	if err := site.Render(ctx, overview, site.Options{
		OutputDir:    abs,
		TemplateDir:  design,
		ImageBaseURL: s.cfg.PublicBaseURL(),
		Logger:       s.base,
	}); err != nil {
		return BuildResult{}, err
	}
	return BuildResult{OutputDir: abs, Overview: overview}, nil
}

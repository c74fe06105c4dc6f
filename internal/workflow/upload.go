package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pxl/internal/catalog"
	"pxl/internal/lock"
	"pxl/internal/publish"
	"pxl/internal/site"
)

// ErrAppendDeclined is returned when the caller refuses to add photos to an
// album that already exists.
var ErrAppendDeclined = errors.New("append to existing album declined")

// UploadRequest describes one upload run.
type UploadRequest struct {
	Dir       string
	AlbumName string
	// BreakLock overwrites a lock held by someone else.
	BreakLock bool
	// ConfirmAppend is asked, while the lock is held, whether photos may be
	// appended to an existing album. Nil means yes.
	ConfirmAppend func(existing catalog.Album) (bool, error)
}

// UploadResult summarizes a finished upload.
type UploadResult struct {
	Album   catalog.Album
	Added   []catalog.Image
	Skipped []publish.Skipped
	Created bool
}

// Upload publishes the photos in req.Dir into the named album and persists
// the catalog, all while holding the advisory lock.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	name := strings.TrimSpace(req.AlbumName)
	if name == "" {
		return UploadResult{}, fmt.Errorf("%w: album name is required", publish.ErrInvalidInput)
	}
	if err := site.ValidateSlug(catalog.Slug(name)); err != nil {
		return UploadResult{}, fmt.Errorf("album %q: %w", name, err)
	}

	scan, err := publish.ScanDirectory(req.Dir)
	if err != nil {
		return UploadResult{}, err
	}
	for _, skipped := range scan.Skipped {
		s.logger.Info("skipping entry", "name", skipped.Name, "reason", skipped.Reason)
	}
	if len(scan.Files) == 0 {
		s.logger.Warn("no JPEG files found; the album will be saved without new photos", "dir", req.Dir)
	}

	var result UploadResult
	err = lock.WithLock(ctx, s.locks, req.BreakLock, func(ctx context.Context) error {
		overview, err := s.catalog.Fetch(ctx)
		if err != nil {
			return err
		}

		album, exists := overview.AlbumByName(name)
		if exists {
			if req.ConfirmAppend != nil {
				ok, err := req.ConfirmAppend(album)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: %q", ErrAppendDeclined, name)
				}
			}
			s.logger.Info("appending to existing album", "album", name, "images", len(album.Images))
		} else {
			album = catalog.NewAlbum(name, s.now())
			if err := checkSlugFree(overview, album); err != nil {
				return err
			}
			s.logger.Info("creating new album", "album", name, "slug", album.NameNav)
		}

		images, err := s.publisher.PublishAll(ctx, scan.Files)
		if err != nil {
			return err
		}
		for _, image := range images {
			album = album.AddImage(image)
		}

		if err := s.catalog.Persist(ctx, overview.AddOrReplaceAlbum(album)); err != nil {
			return err
		}
		result = UploadResult{Album: album, Added: images, Skipped: scan.Skipped, Created: !exists}
		return nil
	})
	if err != nil {
		return UploadResult{}, err
	}

	s.logger.Info("upload complete",
		"album", result.Album.NameDisplay,
		"added", len(result.Added),
		"total", len(result.Album.Images),
	)
	return result, nil
}

// checkSlugFree rejects a new album whose slug another album already renders
// to, e.g. "road trip" next to "Road Trip".
func checkSlugFree(overview catalog.Overview, album catalog.Album) error {
	for _, existing := range overview.Albums {
		if existing.NameNav == album.NameNav {
			return fmt.Errorf("%w: %q would share slug %q with album %q",
				site.ErrInvalidAlbum, album.NameDisplay, album.NameNav, existing.NameDisplay)
		}
	}
	return nil
}

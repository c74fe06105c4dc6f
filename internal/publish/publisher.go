package publish

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pxl/internal/catalog"
	"pxl/internal/logging"
	"pxl/internal/objectstore"
)

const (
	defaultConcurrency = 4
	variantQuality     = 85
)

// Options configures a Publisher.
type Options struct {
	// Variants enables the resized display and thumbnail renditions.
	Variants bool
	// Concurrency bounds parallel uploads in PublishAll. Values below one
	// use the default.
	Concurrency int
	Logger      *slog.Logger
	// NewID overrides identifier generation.
	NewID func() uuid.UUID
}

// Publisher uploads local images.
type Publisher struct {
	gw          objectstore.Gateway
	logger      *slog.Logger
	variants    bool
	concurrency int
	newID       func() uuid.UUID
}

// NewPublisher returns a Publisher writing through gw.
func NewPublisher(gw objectstore.Gateway, opts Options) *Publisher {
	p := &Publisher{
		gw:          gw,
		logger:      logging.NewComponentLogger(opts.Logger, "publish"),
		variants:    opts.Variants,
		concurrency: opts.Concurrency,
		newID:       opts.NewID,
	}
	if p.concurrency < 1 {
		p.concurrency = defaultConcurrency
	}
	if p.newID == nil {
		p.newID = uuid.New
	}
	return p
}

// Publish uploads the file at path and returns the catalog entry describing
// the uploaded renditions.
func (p *Publisher) Publish(ctx context.Context, path string) (catalog.Image, error) {
	if ext := NormalizeExtension(path); ext != catalog.ImageExtension {
		return catalog.Image{}, fmt.Errorf("%w: %s: unsupported extension %q", ErrInvalidInput, path, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.Image{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	renditions := map[catalog.Size][]byte{catalog.SizeOriginal: data}
	if p.variants {
		if err := p.renderVariants(data, renditions); err != nil {
			return catalog.Image{}, fmt.Errorf("%w: %s: %w", ErrInvalidInput, path, err)
		}
	}

	img := catalog.Image{RemoteUUID: p.newID()}
	started := time.Now()
	for _, size := range catalog.Sizes {
		body, ok := renditions[size]
		if !ok {
			continue
		}
		key := img.ObjectName(size)
		if err := p.gw.Put(ctx, key, body, objectstore.PutOptions{
			ContentType: objectstore.ContentTypeJPEG,
			ACL:         objectstore.ACLPublicRead,
		}); err != nil {
			return catalog.Image{}, fmt.Errorf("publish %s: %w", filepath.Base(path), err)
		}
		img.AvailableSizes = append(img.AvailableSizes, size)
	}

	p.logger.Info("image published",
		"file", filepath.Base(path),
		"id", img.ID(),
		"size", humanize.Bytes(uint64(len(data))),
		"renditions", len(img.AvailableSizes),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return img, nil
}

// PublishAll uploads paths in parallel, bounded by the configured
// concurrency. Results follow the order of paths. The first failure cancels
// the remaining uploads.
func (p *Publisher) PublishAll(ctx context.Context, paths []string) ([]catalog.Image, error) {
	images := make([]catalog.Image, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := p.Publish(gctx, path)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (p *Publisher) renderVariants(data []byte, out map[catalog.Size][]byte) error {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	for _, size := range []catalog.Size{catalog.SizeDisplay, catalog.SizeThumbnail} {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, fit(src, size.MaxWidth()), imaging.JPEG, imaging.JPEGQuality(variantQuality)); err != nil {
			return fmt.Errorf("encode %s: %w", size, err)
		}
		out[size] = buf.Bytes()
	}
	return nil
}

// fit bounds the width of img, preserving the aspect ratio. Images already
// narrow enough are returned unchanged.
func fit(img image.Image, maxWidth int) image.Image {
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}

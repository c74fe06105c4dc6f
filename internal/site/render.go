package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"pxl/internal/catalog"
	"pxl/internal/fileutil"
	"pxl/internal/logging"
)

//go:embed design
var embeddedDesign embed.FS

const (
	indexTemplate = "index.html.tmpl"
	albumTemplate = "album.html.tmpl"
	photoTemplate = "photo.html.tmpl"
	notFoundPage  = "404.html"
	pageName      = "index.html"
)

// ErrInvalidAlbum reports an album that cannot be written to its own
// directory.
var ErrInvalidAlbum = errors.New("invalid album for rendering")

var staticDirs = []string{"css", "js"}

// Options configures Render.
type Options struct {
	// OutputDir receives the site. Its contents are replaced; the directory
	// itself is kept.
	OutputDir string
	// TemplateDir overrides the embedded design.
	TemplateDir string
	// ImageBaseURL prefixes every image object name.
	ImageBaseURL string
	Logger       *slog.Logger
}

// DefaultDesign returns the design embedded in the binary.
func DefaultDesign() fs.FS {
	sub, err := fs.Sub(embeddedDesign, "design")
	if err != nil {
		panic(err)
	}
	return sub
}

type indexPage struct {
	Albums []catalog.Album
}

type albumPage struct {
	Album catalog.Album
}

type photoPage struct {
	Title    string
	AlbumNav string
	Image    catalog.Image
	Prev     *catalog.Image
	Next     *catalog.Image
}

type templates struct {
	index *template.Template
	album *template.Template
	photo *template.Template
}

// Render writes the static site for overview into opts.OutputDir.
func Render(ctx context.Context, overview catalog.Overview, opts Options) error {
	logger := logging.NewComponentLogger(opts.Logger, "site")
	if strings.TrimSpace(opts.OutputDir) == "" {
		return errors.New("render site: output directory is required")
	}

	design := DefaultDesign()
	if opts.TemplateDir != "" {
		design = os.DirFS(opts.TemplateDir)
	}
	tmpl, err := loadTemplates(design, opts.ImageBaseURL)
	if err != nil {
		return err
	}
	if err := Validate(overview); err != nil {
		return err
	}

	if err := fileutil.ClearDir(opts.OutputDir); err != nil {
		return fmt.Errorf("render site: %w", err)
	}
	for _, dir := range staticDirs {
		if err := fileutil.CopyTree(design, dir, filepath.Join(opts.OutputDir, dir)); err != nil {
			return fmt.Errorf("render site: copy %s: %w", dir, err)
		}
	}
	if err := fileutil.CopyFile(design, notFoundPage, filepath.Join(opts.OutputDir, notFoundPage)); err != nil {
		return fmt.Errorf("render site: copy %s: %w", notFoundPage, err)
	}

	if err := writePage(tmpl.index, filepath.Join(opts.OutputDir, pageName), indexPage{Albums: overview.Albums}); err != nil {
		return err
	}

	pages := 1
	for _, album := range overview.Albums {
		if err := ctx.Err(); err != nil {
			return err
		}
		albumDir := filepath.Join(opts.OutputDir, album.NameNav)
		if err := os.Mkdir(albumDir, 0o755); err != nil {
			return fmt.Errorf("render album %q: %w", album.NameDisplay, err)
		}
		if err := writePage(tmpl.album, filepath.Join(albumDir, pageName), albumPage{Album: album}); err != nil {
			return err
		}
		pages++

		last := len(album.Images) - 1
		for i, image := range album.Images {
			page := photoPage{
				Title:    fmt.Sprintf("%s - %d / %d", album.NameDisplay, i, last),
				AlbumNav: album.NameNav,
				Image:    image,
			}
			if i > 0 {
				page.Prev = &album.Images[i-1]
			}
			if i < last {
				page.Next = &album.Images[i+1]
			}
			photoDir := filepath.Join(albumDir, image.RemoteUUID.String())
			if err := os.Mkdir(photoDir, 0o755); err != nil {
				return fmt.Errorf("render photo %s of %q: %w", image.RemoteUUID, album.NameDisplay, err)
			}
			if err := writePage(tmpl.photo, filepath.Join(photoDir, pageName), page); err != nil {
				return err
			}
			pages++
		}
	}

	logger.Info("site rendered",
		"output_dir", opts.OutputDir,
		"albums", len(overview.Albums),
		"images", overview.ImageCount(),
		"pages", pages,
	)
	return nil
}

func loadTemplates(design fs.FS, baseURL string) (templates, error) {
	funcs := templateFuncs(baseURL)
	parse := func(name string) (*template.Template, error) {
		t, err := template.New(name).Funcs(funcs).ParseFS(design, name)
		if err != nil {
			return nil, fmt.Errorf("load template %s: %w", name, err)
		}
		return t, nil
	}

	var out templates
	var err error
	if out.index, err = parse(indexTemplate); err != nil {
		return templates{}, err
	}
	if out.album, err = parse(albumTemplate); err != nil {
		return templates{}, err
	}
	if out.photo, err = parse(photoTemplate); err != nil {
		return templates{}, err
	}
	return out, nil
}

// ValidateSlug rejects album slugs that would escape the output directory or
// collide with the static assets.
func ValidateSlug(slug string) error {
	switch {
	case slug == "", slug == ".", slug == "..":
		return fmt.Errorf("%w: slug %q", ErrInvalidAlbum, slug)
	case strings.ContainsAny(slug, `/\`):
		return fmt.Errorf("%w: slug %q contains a path separator", ErrInvalidAlbum, slug)
	case slug == notFoundPage, slug == pageName, slices.Contains(staticDirs, slug):
		return fmt.Errorf("%w: slug %q is reserved", ErrInvalidAlbum, slug)
	}
	return nil
}

// Validate checks that every album and photo of overview gets a directory of
// its own. Render calls it before touching the output directory.
func Validate(overview catalog.Overview) error {
	seen := make(map[string]string, len(overview.Albums))
	for _, album := range overview.Albums {
		if err := ValidateSlug(album.NameNav); err != nil {
			return fmt.Errorf("album %q: %w", album.NameDisplay, err)
		}
		if other, ok := seen[album.NameNav]; ok {
			return fmt.Errorf("%w: albums %q and %q share slug %q", ErrInvalidAlbum, other, album.NameDisplay, album.NameNav)
		}
		seen[album.NameNav] = album.NameDisplay

		ids := make(map[string]struct{}, len(album.Images))
		for _, image := range album.Images {
			id := image.RemoteUUID.String()
			if _, dup := ids[id]; dup {
				return fmt.Errorf("%w: album %q lists image %s twice", ErrInvalidAlbum, album.NameDisplay, id)
			}
			ids[id] = struct{}{}
		}
	}
	return nil
}

func writePage(t *template.Template, path string, data any) error {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", t.Name(), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

package publish_test

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"pxl/internal/catalog"
	"pxl/internal/objectstore"
	"pxl/internal/publish"
	"pxl/internal/testsupport"
)

func TestNormalizeExtension(t *testing.T) {
	cases := map[string]string{
		"a.jpg":          ".jpg",
		"a.JPG":          ".jpg",
		"a.jpeg":         ".jpg",
		"dir/b.JpEg":     ".jpg",
		"c.PNG":          ".png",
		"noextension":    "",
		"archive.tar.GZ": ".gz",
	}
	for in, want := range cases {
		if got := publish.NormalizeExtension(in); got != want {
			t.Errorf("NormalizeExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "b.JPEG"), "b")
	testsupport.WriteFile(t, filepath.Join(dir, "a.jpg"), "a")
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), "n")
	testsupport.WriteFile(t, filepath.Join(dir, "nested", "c.jpg"), "c")

	result, err := publish.ScanDirectory(dir)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 files, got %v", result.Files)
	}
	if filepath.Base(result.Files[0]) != "a.jpg" || filepath.Base(result.Files[1]) != "b.JPEG" {
		t.Fatalf("unexpected order %v", result.Files)
	}
	if !filepath.IsAbs(result.Files[0]) {
		t.Fatalf("expected absolute paths, got %s", result.Files[0])
	}
	if len(result.Skipped) != 2 {
		t.Fatalf("expected nested dir and txt skipped, got %+v", result.Skipped)
	}
}

func TestScanDirectoryRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jpg")
	testsupport.WriteFile(t, path, "a")
	if _, err := publish.ScanDirectory(path); !errors.Is(err, publish.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := publish.ScanDirectory(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, publish.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing dir, got %v", err)
	}
}

func TestPublishOriginalOnly(t *testing.T) {
	gw := testsupport.NewGateway()
	id := uuid.MustParse("8f1c2b5e4a3d4c219a7b0d3e2f1a6b9c")
	publisher := publish.NewPublisher(gw, publish.Options{NewID: func() uuid.UUID { return id }})

	path := filepath.Join(t.TempDir(), "photo.JPEG")
	testsupport.WriteJPEG(t, path, 32, 16)

	img, err := publisher.Publish(context.Background(), path)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if img.RemoteUUID != id {
		t.Fatalf("unexpected id %s", img.RemoteUUID)
	}
	if len(img.AvailableSizes) != 1 || img.AvailableSizes[0] != catalog.SizeOriginal {
		t.Fatalf("unexpected sizes %v", img.AvailableSizes)
	}
	obj, ok := gw.Object("8f1c2b5e-4a3d-4c21-9a7b-0d3e2f1a6b9c.jpg")
	if !ok {
		t.Fatalf("original not uploaded; keys %v", gw.Keys())
	}
	if obj.Opts.ACL != objectstore.ACLPublicRead || obj.Opts.ContentType != objectstore.ContentTypeJPEG {
		t.Fatalf("unexpected put options %+v", obj.Opts)
	}
}

func TestPublishVariantsNeverUpscale(t *testing.T) {
	gw := testsupport.NewGateway()
	publisher := publish.NewPublisher(gw, publish.Options{Variants: true})

	path := filepath.Join(t.TempDir(), "wide.jpg")
	testsupport.WriteJPEG(t, path, 800, 200)

	img, err := publisher.Publish(context.Background(), path)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	for _, size := range catalog.Sizes {
		if !img.Has(size) {
			t.Fatalf("missing rendition %s", size)
		}
	}

	widths := map[catalog.Size]int{
		catalog.SizeDisplay:   800,
		catalog.SizeThumbnail: 400,
	}
	for size, want := range widths {
		obj, ok := gw.Object(img.ObjectName(size))
		if !ok {
			t.Fatalf("%s not uploaded", size)
		}
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(obj.Data))
		if err != nil {
			t.Fatalf("decode %s: %v", size, err)
		}
		if cfg.Width != want {
			t.Fatalf("%s width = %d, want %d", size, cfg.Width, want)
		}
	}
}

func TestPublishRejectsUndecodableWithVariants(t *testing.T) {
	gw := testsupport.NewGateway()
	publisher := publish.NewPublisher(gw, publish.Options{Variants: true})
	path := filepath.Join(t.TempDir(), "broken.jpg")
	testsupport.WriteFile(t, path, "not a jpeg")

	if _, err := publisher.Publish(context.Background(), path); !errors.Is(err, publish.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(gw.Keys()) != 0 {
		t.Fatalf("nothing should be uploaded, got %v", gw.Keys())
	}
}

func TestPublishAllKeepsInputOrder(t *testing.T) {
	gw := testsupport.NewGateway()
	issued := map[string]bool{}
	publisher := publish.NewPublisher(gw, publish.Options{Concurrency: 3})

	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"} {
		path := filepath.Join(dir, name)
		testsupport.WriteFile(t, path, name)
		paths = append(paths, path)
	}

	images, err := publisher.PublishAll(context.Background(), paths)
	if err != nil {
		t.Fatalf("PublishAll: %v", err)
	}
	if len(images) != len(paths) {
		t.Fatalf("expected %d images, got %d", len(paths), len(images))
	}
	for i, img := range images {
		obj, ok := gw.Object(img.ObjectName(catalog.SizeOriginal))
		if !ok {
			t.Fatalf("image %d not uploaded", i)
		}
		if got, want := string(obj.Data), filepath.Base(paths[i]); got != want {
			t.Fatalf("image %d holds %q, want %q", i, got, want)
		}
		if issued[img.ID()] {
			t.Fatalf("duplicate identifier %s", img.ID())
		}
		issued[img.ID()] = true
	}
}

func TestPublishAllStopsOnFailure(t *testing.T) {
	gw := testsupport.NewGateway()
	gw.Fail = func(op, key string) error {
		if op == "put" {
			return objectstore.ErrRemoteIO
		}
		return nil
	}
	publisher := publish.NewPublisher(gw, publish.Options{Concurrency: 1})
	path := filepath.Join(t.TempDir(), "a.jpg")
	testsupport.WriteFile(t, path, "a")

	if _, err := publisher.PublishAll(context.Background(), []string{path, path}); !errors.Is(err, objectstore.ErrRemoteIO) {
		t.Fatalf("expected ErrRemoteIO, got %v", err)
	}
}

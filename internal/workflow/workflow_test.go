package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"pxl/internal/catalog"
	"pxl/internal/lock"
	"pxl/internal/logging"
	"pxl/internal/objectstore"
	"pxl/internal/publish"
	"pxl/internal/site"
	"pxl/internal/testsupport"
	"pxl/internal/workflow"
)

var now = time.Date(2018, time.January, 25, 14, 3, 9, 0, time.UTC)

func newService(t *testing.T, gw objectstore.Gateway) *workflow.Service {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return workflow.New(cfg, gw, logging.NewNop(),
		workflow.WithClock(func() time.Time { return now }),
		workflow.WithIdentity(func() (string, string) { return "alice", "studio" }),
	)
}

func photoDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		testsupport.WriteJPEG(t, filepath.Join(dir, name), 8, 8)
	}
	return dir
}

func fetch(t *testing.T, gw objectstore.Gateway) catalog.Overview {
	t.Helper()
	overview, err := catalog.NewStore(gw, nil).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	return overview
}

func TestUploadCreatesAlbum(t *testing.T) {
	gw := testsupport.NewGateway()
	svc := newService(t, gw)
	dir := photoDir(t, "b.jpg", "a.JPEG")
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), "skip me")

	result, err := svc.Upload(context.Background(), workflow.UploadRequest{Dir: dir, AlbumName: "Summer Trip"})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !result.Created || len(result.Added) != 2 || len(result.Skipped) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	overview := fetch(t, gw)
	album, ok := overview.AlbumByName("Summer Trip")
	if !ok {
		t.Fatalf("album not persisted")
	}
	if album.NameNav != "summer-trip" || !album.Created.Equal(now) {
		t.Fatalf("unexpected album %+v", album)
	}
	if len(album.Images) != 2 || !album.Images[0].Equal(result.Added[0]) || !album.Images[1].Equal(result.Added[1]) {
		t.Fatalf("images not stored in scan order")
	}
	if _, held := gw.Object(lock.Key); held {
		t.Fatalf("lock.json left behind")
	}
	if gw.CountCalls("delete") != 1 {
		t.Fatalf("expected one lock release, got %d", gw.CountCalls("delete"))
	}
}

func TestUploadAppendsAndPreservesOtherAlbums(t *testing.T) {
	gw := testsupport.NewGateway()
	svc := newService(t, gw)

	if _, err := svc.Upload(context.Background(), workflow.UploadRequest{Dir: photoDir(t, "a.jpg"), AlbumName: "One"}); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if _, err := svc.Upload(context.Background(), workflow.UploadRequest{Dir: photoDir(t, "a.jpg"), AlbumName: "Two"}); err != nil {
		t.Fatalf("second upload: %v", err)
	}

	asked := false
	result, err := svc.Upload(context.Background(), workflow.UploadRequest{
		Dir:       photoDir(t, "b.jpg", "c.jpg"),
		AlbumName: "One",
		ConfirmAppend: func(existing catalog.Album) (bool, error) {
			asked = true
			if len(existing.Images) != 1 {
				t.Errorf("expected existing album with 1 image, got %d", len(existing.Images))
			}
			return true, nil
		},
	})
	if err != nil {
		t.Fatalf("append upload: %v", err)
	}
	if !asked || result.Created {
		t.Fatalf("expected confirmation for an existing album")
	}

	overview := fetch(t, gw)
	if len(overview.Albums) != 2 {
		t.Fatalf("expected 2 albums, got %d", len(overview.Albums))
	}
	if overview.Albums[0].NameDisplay != "Two" || overview.Albums[1].NameDisplay != "One" {
		t.Fatalf("replaced album should move to the end")
	}
	if got := len(overview.Albums[1].Images); got != 3 {
		t.Fatalf("expected 3 images after append, got %d", got)
	}
}

func TestUploadAppendDeclined(t *testing.T) {
	gw := testsupport.NewGateway()
	svc := newService(t, gw)
	if _, err := svc.Upload(context.Background(), workflow.UploadRequest{Dir: photoDir(t, "a.jpg"), AlbumName: "One"}); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	before, _ := gw.Object(catalog.StateKey)

	_, err := svc.Upload(context.Background(), workflow.UploadRequest{
		Dir:           photoDir(t, "b.jpg"),
		AlbumName:     "One",
		ConfirmAppend: func(catalog.Album) (bool, error) { return false, nil },
	})
	if !errors.Is(err, workflow.ErrAppendDeclined) {
		t.Fatalf("expected ErrAppendDeclined, got %v", err)
	}
	after, _ := gw.Object(catalog.StateKey)
	if string(before.Data) != string(after.Data) {
		t.Fatalf("catalog changed after declined append")
	}
	if _, held := gw.Object(lock.Key); held {
		t.Fatalf("lock.json left behind")
	}
}

func TestUploadLockHeld(t *testing.T) {
	gw := testsupport.NewGateway()
	gw.Seed(lock.Key, []byte(`{"user":"bob","hostname":"laptop","start_time":"2018-01-25T10:00:00Z"}`))
	svc := newService(t, gw)

	_, err := svc.Upload(context.Background(), workflow.UploadRequest{Dir: photoDir(t, "a.jpg"), AlbumName: "One"})
	if !errors.Is(err, lock.ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}
	if !strings.Contains(err.Error(), "bob@laptop") {
		t.Fatalf("expected holder in error, got %v", err)
	}
	for _, call := range gw.Calls() {
		if strings.HasPrefix(call, "put ") || call == "get "+catalog.StateKey {
			t.Fatalf("held lock must stop the upload before any write or fetch: %v", gw.Calls())
		}
	}
	if _, held := gw.Object(lock.Key); !held {
		t.Fatalf("foreign lock must not be released")
	}
}

func TestUploadBreakLock(t *testing.T) {
	gw := testsupport.NewGateway()
	gw.Seed(lock.Key, []byte(`{"user":"bob","hostname":"laptop","start_time":"2018-01-25T10:00:00Z"}`))
	svc := newService(t, gw)

	if _, err := svc.Upload(context.Background(), workflow.UploadRequest{Dir: photoDir(t, "a.jpg"), AlbumName: "One", BreakLock: true}); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, held := gw.Object(lock.Key); held {
		t.Fatalf("lock.json left behind")
	}
}

func TestUploadInvalidDirectoryTakesNoLock(t *testing.T) {
	gw := testsupport.NewGateway()
	svc := newService(t, gw)

	_, err := svc.Upload(context.Background(), workflow.UploadRequest{Dir: filepath.Join(t.TempDir(), "missing"), AlbumName: "One"})
	if !errors.Is(err, publish.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(gw.Calls()) != 0 {
		t.Fatalf("expected no remote calls, got %v", gw.Calls())
	}
}

func TestUploadRejectsUnrenderableSlug(t *testing.T) {
	for _, name := range []string{"CSS", "a/b", "Index.html", ".."} {
		t.Run(name, func(t *testing.T) {
			gw := testsupport.NewGateway()
			svc := newService(t, gw)

			_, err := svc.Upload(context.Background(), workflow.UploadRequest{Dir: photoDir(t, "a.jpg"), AlbumName: name})
			if !errors.Is(err, site.ErrInvalidAlbum) {
				t.Fatalf("expected ErrInvalidAlbum, got %v", err)
			}
			if len(gw.Calls()) != 0 {
				t.Fatalf("expected no remote calls, got %v", gw.Calls())
			}
		})
	}
}

func TestUploadRejectsSlugCollision(t *testing.T) {
	gw := testsupport.NewGateway()
	svc := newService(t, gw)
	if _, err := svc.Upload(context.Background(), workflow.UploadRequest{Dir: photoDir(t, "a.jpg"), AlbumName: "Road Trip"}); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	keysBefore := gw.Keys()

	_, err := svc.Upload(context.Background(), workflow.UploadRequest{Dir: photoDir(t, "b.jpg"), AlbumName: "road trip"})
	if !errors.Is(err, site.ErrInvalidAlbum) {
		t.Fatalf("expected ErrInvalidAlbum, got %v", err)
	}
	if keysAfter := gw.Keys(); strings.Join(keysAfter, ",") != strings.Join(keysBefore, ",") {
		t.Fatalf("rejected upload changed the bucket: %v -> %v", keysBefore, keysAfter)
	}

	overview := fetch(t, gw)
	if len(overview.Albums) != 1 || overview.Albums[0].NameDisplay != "Road Trip" {
		t.Fatalf("unexpected albums %+v", overview.Albums)
	}
	if _, err := svc.Build(context.Background(), workflow.BuildRequest{OutputDir: filepath.Join(t.TempDir(), "site")}); err != nil {
		t.Fatalf("Build after rejected upload: %v", err)
	}
}

func TestUploadCorruptedCatalogReleasesLock(t *testing.T) {
	gw := testsupport.NewGateway()
	gw.Seed(catalog.StateKey, []byte(`{"albums": 3}`))
	svc := newService(t, gw)

	_, err := svc.Upload(context.Background(), workflow.UploadRequest{Dir: photoDir(t, "a.jpg"), AlbumName: "One"})
	if !errors.Is(err, catalog.ErrCorruptedCatalog) {
		t.Fatalf("expected ErrCorruptedCatalog, got %v", err)
	}
	if _, held := gw.Object(lock.Key); held {
		t.Fatalf("lock.json left behind")
	}
	if gw.CountCalls("put") != 1 {
		t.Fatalf("only the lock should have been written, got %v", gw.Calls())
	}
}

func TestUploadWithFilesystemBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	gw := objectstore.NewFS(cfg.Storage.Root)
	svc := workflow.New(cfg, gw, logging.NewNop())

	result, err := svc.Upload(context.Background(), workflow.UploadRequest{Dir: photoDir(t, "a.jpg"), AlbumName: "Local"})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	key := result.Added[0].ObjectName(catalog.SizeOriginal)
	if _, err := os.Stat(filepath.Join(cfg.Storage.Root, key)); err != nil {
		t.Fatalf("image not stored: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Storage.Root, lock.Key)); !os.IsNotExist(err) {
		t.Fatalf("lock.json left behind: %v", err)
	}
}

func TestBuildRendersCatalog(t *testing.T) {
	gw := testsupport.NewGateway()
	svc := newService(t, gw)
	uploaded, err := svc.Upload(context.Background(), workflow.UploadRequest{Dir: photoDir(t, "a.jpg"), AlbumName: "Summer Trip"})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	callsBefore := len(gw.Calls())

	out := filepath.Join(t.TempDir(), "site")
	result, err := svc.Build(context.Background(), workflow.BuildRequest{OutputDir: out})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.OutputDir != out {
		t.Fatalf("output dir = %s", result.OutputDir)
	}
	photo := filepath.Join(out, "summer-trip", uploaded.Added[0].RemoteUUID.String(), "index.html")
	data, err := os.ReadFile(photo)
	if err != nil {
		t.Fatalf("photo page: %v", err)
	}
	if !strings.Contains(string(data), "https://img.example.test/"+uploaded.Added[0].ObjectName(catalog.SizeOriginal)) {
		t.Fatalf("photo page should use the public URL:\n%s", data)
	}

	for _, call := range gw.Calls()[callsBefore:] {
		if strings.Contains(call, lock.Key) {
			t.Fatalf("build must not touch the remote lock: %s", call)
		}
	}
}

func TestBuildEmptyCatalog(t *testing.T) {
	svc := newService(t, testsupport.NewGateway())
	out := filepath.Join(t.TempDir(), "site")
	if _, err := svc.Build(context.Background(), workflow.BuildRequest{OutputDir: out}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "index.html")); err != nil {
		t.Fatalf("index.html missing: %v", err)
	}
}

func TestBuildRefusesConcurrentLocalBuild(t *testing.T) {
	svc := newService(t, testsupport.NewGateway())
	parent := t.TempDir()
	held := flock.New(filepath.Join(parent, ".pxl-build.lock"))
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	defer held.Unlock()

	_, err := svc.Build(context.Background(), workflow.BuildRequest{OutputDir: filepath.Join(parent, "site")})
	if !errors.Is(err, workflow.ErrBuildInProgress) {
		t.Fatalf("expected ErrBuildInProgress, got %v", err)
	}
}

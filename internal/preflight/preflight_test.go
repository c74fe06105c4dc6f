package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pxl/internal/catalog"
	"pxl/internal/lock"
	"pxl/internal/objectstore"
	"pxl/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputDir_Missing(t *testing.T) {
	base := t.TempDir()
	result := CheckOutputDir(filepath.Join(base, "site", "build"))
	if !result.Passed {
		t.Fatalf("expected pass when an ancestor is writable, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDesign(t *testing.T) {
	if result := CheckDesign(""); !result.Passed {
		t.Fatalf("built-in design should pass")
	}

	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "index.html.tmpl"), "")
	result := CheckDesign(dir)
	if result.Passed || !strings.Contains(result.Detail, "photo.html.tmpl") {
		t.Fatalf("expected missing templates, got %+v", result)
	}
}

func TestCheckStorage(t *testing.T) {
	gw := testsupport.NewGateway()
	if result := CheckStorage(context.Background(), gw); !result.Passed || !strings.Contains(result.Detail, "no catalog") {
		t.Fatalf("unexpected result %+v", result)
	}

	gw.Seed(catalog.StateKey, []byte(`{"albums":[]}`))
	gw.Seed(lock.Key, []byte(`{}`))
	result := CheckStorage(context.Background(), gw)
	if !result.Passed || !strings.Contains(result.Detail, "catalog present") || !strings.Contains(result.Detail, "lock held") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckStorage_Failure(t *testing.T) {
	gw := testsupport.NewGateway()
	gw.Fail = func(op, key string) error { return objectstore.ErrRemoteIO }
	if result := CheckStorage(context.Background(), gw); result.Passed {
		t.Fatalf("expected failure")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_FilesystemBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Storage.Root, 0o755); err != nil {
		t.Fatal(err)
	}
	results := RunAll(context.Background(), cfg, objectstore.NewFS(cfg.Storage.Root))
	if len(results) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures %+v", failed)
	}
}

package objectstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"pxl/internal/objectstore"
)

func TestFSPutGetList(t *testing.T) {
	ctx := context.Background()
	gw := objectstore.NewFS(filepath.Join(t.TempDir(), "bucket"))

	keys, err := gw.List(ctx, "")
	if err != nil {
		t.Fatalf("List on missing root returned error: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected empty listing, got %v", keys)
	}

	for _, key := range []string{"state.json", "b1.jpg", "a1_w_400.jpg"} {
		if err := gw.Put(ctx, key, []byte(key), objectstore.PutOptions{}); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}

	data, err := gw.Get(ctx, "state.json")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(data) != "state.json" {
		t.Fatalf("unexpected content %q", data)
	}

	keys, err = gw.List(ctx, "")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if want := []string{"a1_w_400.jpg", "b1.jpg", "state.json"}; !slices.Equal(keys, want) {
		t.Fatalf("List() = %v, want %v", keys, want)
	}

	keys, err = gw.List(ctx, "state")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if !slices.Equal(keys, []string{"state.json"}) {
		t.Fatalf("prefix listing = %v", keys)
	}
}

func TestFSGetMissingReturnsNotFound(t *testing.T) {
	gw := objectstore.NewFS(t.TempDir())
	_, err := gw.Get(context.Background(), "state.json")
	if !errors.Is(err, objectstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFSPutIfAbsent(t *testing.T) {
	ctx := context.Background()
	gw := objectstore.NewFS(t.TempDir())

	if err := gw.PutIfAbsent(ctx, "lock.json", []byte("first"), objectstore.PutOptions{}); err != nil {
		t.Fatalf("first PutIfAbsent: %v", err)
	}
	err := gw.PutIfAbsent(ctx, "lock.json", []byte("second"), objectstore.PutOptions{})
	if !errors.Is(err, objectstore.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
	data, err := gw.Get(ctx, "lock.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "first" {
		t.Fatalf("expected original content to survive, got %q", data)
	}
}

func TestFSDeleteAndExists(t *testing.T) {
	ctx := context.Background()
	gw := objectstore.NewFS(t.TempDir())

	if err := gw.Put(ctx, "lock.json", []byte("{}"), objectstore.PutOptions{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ok, err := objectstore.Exists(ctx, gw, "lock.json")
	if err != nil || !ok {
		t.Fatalf("expected lock to exist, got %v %v", ok, err)
	}
	if err := gw.Delete(ctx, "lock.json", "never-written.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ok, err = objectstore.Exists(ctx, gw, "lock.json")
	if err != nil || ok {
		t.Fatalf("expected lock to be gone, got %v %v", ok, err)
	}
}

func TestFSRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	gw := objectstore.NewFS(t.TempDir())
	for _, key := range []string{"", "../outside.json", "/etc/passwd"} {
		err := gw.Put(ctx, key, []byte("x"), objectstore.PutOptions{})
		if !errors.Is(err, objectstore.ErrRemoteIO) {
			t.Fatalf("key %q: expected ErrRemoteIO, got %v", key, err)
		}
	}
}

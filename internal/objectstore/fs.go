package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FS implements Gateway using the local filesystem. Keys are mapped to file
// paths under a root directory. ACLs and content types are not recorded.
type FS struct {
	root string
}

var (
	_ Gateway           = (*FS)(nil)
	_ ConditionalPutter = (*FS)(nil)
)

// NewFS creates a filesystem-backed Gateway rooted at the given directory.
func NewFS(root string) *FS {
	return &FS{root: root}
}

func (s *FS) path(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.root, cleaned), nil
}

func (s *FS) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, wrapRemote("get", key, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, wrapRemote("get", key, err)
	}
	return data, nil
}

func (s *FS) Put(_ context.Context, key string, data []byte, _ PutOptions) error {
	path, err := s.path(key)
	if err != nil {
		return wrapRemote("put", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return wrapRemote("put", key, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return wrapRemote("put", key, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return wrapRemote("put", key, err)
	}
	if err := tmp.Close(); err != nil {
		return wrapRemote("put", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return wrapRemote("put", key, err)
	}
	return nil
}

// PutIfAbsent relies on O_EXCL, which the kernel applies atomically.
func (s *FS) PutIfAbsent(_ context.Context, key string, data []byte, _ PutOptions) error {
	path, err := s.path(key)
	if err != nil {
		return wrapRemote("put", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return wrapRemote("put", key, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrPrecondition, key)
		}
		return wrapRemote("put", key, err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return wrapRemote("put", key, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return wrapRemote("put", key, err)
	}
	return nil
}

func (s *FS) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		path, err := s.path(key)
		if err != nil {
			return wrapRemote("delete", key, err)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return wrapRemote("delete", key, err)
		}
	}
	return nil
}

func (s *FS) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.root {
				return fs.SkipAll
			}
			return err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".put-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, wrapRemote("list", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

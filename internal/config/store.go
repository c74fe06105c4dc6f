package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// Store persists the local configuration. Commands receive a Store instead of
// reaching for a fixed path so tests can substitute MemoryStore.
type Store interface {
	// Load returns the validated configuration or ErrNotInitialized.
	Load() (*Config, error)
	// Save writes cfg, replacing any previous configuration.
	Save(cfg *Config) error
	// Remove deletes the stored configuration. Removing a missing
	// configuration is not an error.
	Remove() error
	// Exists reports whether a configuration has been saved.
	Exists() (bool, error)
	// Location describes where the configuration lives.
	Location() string
}

// FileStore keeps the configuration in a TOML file. Writes hold an advisory
// flock on a sibling lock file so concurrent `pxl init` runs cannot interleave.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at path. An empty path selects the
// default location under ~/.config/pxl.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	return &FileStore{path: expanded}, nil
}

func (s *FileStore) Location() string {
	return s.path
}

func (s *FileStore) Exists() (bool, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("config path %s is a directory", s.path)
	}
	return true, nil
}

func (s *FileStore) Load() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	return decode(data)
}

func (s *FileStore) Save(cfg *Config) error {
	if cfg == nil {
		return errors.New("save config: nil config")
	}
	data, err := encode(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (s *FileStore) Remove() error {
	for _, path := range []string{s.path, s.path + ".lock"} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove config: %w", err)
		}
	}
	return nil
}

// MemoryStore keeps the configuration in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store pre-populated with cfg when it is non-nil.
func NewMemoryStore(cfg *Config) *MemoryStore {
	s := &MemoryStore{}
	if cfg != nil {
		if data, err := encode(cfg); err == nil {
			s.data = data
		}
	}
	return s
}

func (s *MemoryStore) Location() string {
	return "memory"
}

func (s *MemoryStore) Exists() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data != nil, nil
}

func (s *MemoryStore) Load() (*Config, error) {
	s.mu.Lock()
	data := s.data
	s.mu.Unlock()
	if data == nil {
		return nil, ErrNotInitialized
	}
	return decode(data)
}

func (s *MemoryStore) Save(cfg *Config) error {
	if cfg == nil {
		return errors.New("save config: nil config")
	}
	data, err := encode(cfg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Remove() error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}

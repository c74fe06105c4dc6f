package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pxl/internal/catalog"
)

// ErrInvalidInput reports a local path that cannot be published.
var ErrInvalidInput = errors.New("invalid local input")

// NormalizeExtension returns the lower-cased extension of path with the
// .jpeg spelling folded into .jpg.
func NormalizeExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".jpeg" {
		return catalog.ImageExtension
	}
	return ext
}

// Skipped describes a directory entry ScanDirectory ignored.
type Skipped struct {
	Name   string
	Reason string
}

// ScanResult lists the publishable files of a directory.
type ScanResult struct {
	// Files holds absolute paths sorted by file name.
	Files   []string
	Skipped []Skipped
}

// ScanDirectory returns the top-level regular files of dir whose normalized
// extension is .jpg. Subdirectories are not descended into.
func ScanDirectory(dir string) (ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return ScanResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return ScanResult{}, fmt.Errorf("%w: %s is not a directory", ErrInvalidInput, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ScanResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return ScanResult{}, fmt.Errorf("%w: read %s: %w", ErrInvalidInput, dir, err)
	}

	var result ScanResult
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(abs, name)
		if entry.IsDir() {
			result.Skipped = append(result.Skipped, Skipped{Name: name, Reason: "directory"})
			continue
		}
		if NormalizeExtension(name) != catalog.ImageExtension {
			result.Skipped = append(result.Skipped, Skipped{Name: name, Reason: "unsupported extension"})
			continue
		}
		// Stat follows symlinks so a linked JPEG is still published.
		fi, err := os.Stat(path)
		if err != nil {
			result.Skipped = append(result.Skipped, Skipped{Name: name, Reason: err.Error()})
			continue
		}
		if !fi.Mode().IsRegular() {
			result.Skipped = append(result.Skipped, Skipped{Name: name, Reason: "not a regular file"})
			continue
		}
		result.Files = append(result.Files, path)
	}
	return result, nil
}

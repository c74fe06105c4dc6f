package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sys/unix"

	"pxl/internal/catalog"
	"pxl/internal/lock"
	"pxl/internal/objectstore"
)

const storageTimeout = 10 * time.Second

var designFiles = []string{"index.html.tmpl", "album.html.tmpl", "photo.html.tmpl", "404.html", "css", "js"}

// CheckStorage lists the bucket root to verify credentials and reachability,
// and reports whether a catalog exists and whether the lock is held.
func CheckStorage(ctx context.Context, gw objectstore.Gateway) Result {
	const name = "Object store"

	checkCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	keys, err := gw.List(checkCtx, "")
	if err != nil {
		return Result{Name: name, Detail: summarizeStorageError(err)}
	}
	detail := "reachable, no catalog yet"
	if slices.Contains(keys, catalog.StateKey) {
		detail = "reachable, catalog present"
	}
	if slices.Contains(keys, lock.Key) {
		detail += ", lock held (see `pxl unlock`)"
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDir verifies that the site output directory is writable, or
// that its nearest existing ancestor is when it does not exist yet.
func CheckOutputDir(path string) Result {
	const name = "Output directory"

	target := path
	for {
		if _, err := os.Stat(target); err == nil {
			break
		}
		parent := filepath.Dir(target)
		if parent == target {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", path)}
		}
		target = parent
	}
	result := CheckDirectoryAccess(name, target)
	if result.Passed && target != path {
		result.Detail = fmt.Sprintf("%s (will be created under %s)", path, target)
	}
	return result
}

// CheckDesign verifies that a custom design directory holds every file the
// renderer reads.
func CheckDesign(dir string) Result {
	const name = "Design"

	if dir == "" {
		return Result{Name: name, Passed: true, Detail: "built-in design"}
	}
	var missing []string
	for _, entry := range designFiles {
		if _, err := os.Stat(filepath.Join(dir, entry)); err != nil {
			missing = append(missing, entry)
		}
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: missing %v)", dir, missing)}
	}
	return Result{Name: name, Passed: true, Detail: dir}
}

func summarizeStorageError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out listing the bucket"
	case errors.Is(err, objectstore.ErrRemoteIO):
		return fmt.Sprintf("bucket not accessible: %v", err)
	default:
		return err.Error()
	}
}

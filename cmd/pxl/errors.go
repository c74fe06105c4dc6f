package main

import (
	"errors"
	"fmt"

	"pxl/internal/catalog"
	"pxl/internal/config"
	"pxl/internal/lock"
	"pxl/internal/objectstore"
	"pxl/internal/site"
	"pxl/internal/workflow"
)

// describeError appends a hint for failures the user can act on.
func describeError(err error) string {
	switch {
	case errors.Is(err, lock.ErrLockHeld):
		return fmt.Sprintf("%v\nAnother pxl upload may still be running. If it crashed, rerun with --force or run `pxl unlock`.", err)
	case errors.Is(err, config.ErrNotInitialized):
		return err.Error()
	case errors.Is(err, catalog.ErrCorruptedCatalog):
		return fmt.Sprintf("%v\nThe remote state.json could not be read; fix or restore it before uploading again.", err)
	case errors.Is(err, workflow.ErrAppendDeclined):
		return fmt.Sprintf("%v\nChoose a different album name with --name.", err)
	case errors.Is(err, site.ErrInvalidAlbum):
		return fmt.Sprintf("%v\nAlbum names become directory names; pick a name that is not css, js, index.html or 404.html and has no slashes.", err)
	case errors.Is(err, objectstore.ErrRemoteIO):
		return fmt.Sprintf("%v\nCheck the bucket settings with `pxl config validate` and your network connection.", err)
	default:
		return err.Error()
	}
}

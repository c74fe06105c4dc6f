package objectstore

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested key does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrPrecondition is returned when a conditional write loses because the
	// key already exists.
	ErrPrecondition = errors.New("precondition failed")
	// ErrRemoteIO tags every other store failure (network, permission, quota).
	ErrRemoteIO = errors.New("object store error")
)

// ACL controls object visibility.
type ACL string

const (
	ACLPrivate    ACL = "private"
	ACLPublicRead ACL = "public-read"
)

// Content types used by pxl objects.
const (
	ContentTypeJSON = "application/json"
	ContentTypeJPEG = "image/jpeg"
)

// PutOptions describes how an object is stored.
type PutOptions struct {
	ContentType string
	ACL         ACL
}

// Gateway abstracts the bucket operations pxl needs. Keys are
// bucket-relative.
type Gateway interface {
	// Get reads the object at key. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes data to key, fully replacing any previous content.
	Put(ctx context.Context, key string, data []byte, opts PutOptions) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// List returns all keys starting with prefix, sorted lexicographically.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ConditionalPutter is implemented by backends that can create an object
// atomically only when the key is absent.
type ConditionalPutter interface {
	// PutIfAbsent writes data to key unless it already exists, in which case
	// it returns ErrPrecondition and leaves the stored object untouched.
	PutIfAbsent(ctx context.Context, key string, data []byte, opts PutOptions) error
}

// Exists reports whether key is present using List, the only presence check
// every backend supports.
func Exists(ctx context.Context, gw Gateway, key string) (bool, error) {
	keys, err := gw.List(ctx, key)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k == key {
			return true, nil
		}
	}
	return false, nil
}

func wrapRemote(operation, key string, err error) error {
	if key == "" {
		return fmt.Errorf("%w: %s: %w", ErrRemoteIO, operation, err)
	}
	return fmt.Errorf("%w: %s %s: %w", ErrRemoteIO, operation, key, err)
}

// Package lock implements the advisory lock that serializes catalog
// mutations across machines.
//
// The lock is a small JSON object (lock.json) in the same bucket as the
// catalog. Holders write it before fetching the catalog and delete it after
// persisting. Backends that support create-only writes get an atomic
// acquisition; the others fall back to list-then-put, which leaves a short
// window where two clients can both believe they hold the lock. Locks never
// expire: a crashed holder leaves lock.json behind until someone breaks it
// with --force or `pxl unlock`.
package lock

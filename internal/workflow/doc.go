// Package workflow composes the object store, the advisory lock, the
// catalog, the publisher, and the site renderer into the two end-to-end
// operations pxl exposes.
//
// Upload scans the local directory first, then acquires the lock, fetches
// the catalog, publishes the photos, merges them into the chosen album, and
// persists the catalog. The lock is released on every exit path. Build reads
// the catalog without locking and renders the site, serializing local builds
// that target the same output directory with a file lock.
package workflow

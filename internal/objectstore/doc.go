// Package objectstore defines the Gateway the rest of pxl uses to reach the
// remote bucket, plus its backends.
//
// S3 talks to any S3-compatible service through minio-go. FS maps keys onto a
// local directory for offline use and tests. Backends translate vendor
// failures into the sentinels below so callers can branch with errors.Is
// without importing a vendor SDK.
package objectstore

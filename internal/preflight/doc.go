// Package preflight provides readiness checks for the object store and the
// local paths pxl depends on.
//
// `pxl config validate --check` runs them so a misconfigured bucket or an
// unwritable output directory shows up before an upload takes the lock.
package preflight

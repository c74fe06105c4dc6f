// Package publish uploads local photos to the object store.
//
// Each photo gets a fresh random identifier. The original bytes are uploaded
// untouched as <id>.jpg; when variants are enabled the image is decoded once
// and downscaled copies are uploaded under the size suffixes defined by the
// catalog package. All renditions are public-read image/jpeg objects.
package publish

package catalog

import "fmt"

// Size names a rendition of an uploaded image.
type Size string

const (
	SizeOriginal  Size = "original"
	SizeDisplay   Size = "display_w_1600"
	SizeThumbnail Size = "thumbnail_w_400"
)

// Sizes lists every known rendition, largest first.
var Sizes = []Size{SizeOriginal, SizeDisplay, SizeThumbnail}

// ParseSize validates a rendition name as it appears in state.json.
func ParseSize(name string) (Size, error) {
	for _, size := range Sizes {
		if string(size) == name {
			return size, nil
		}
	}
	return "", fmt.Errorf("unknown image size %q", name)
}

// Suffix is appended to the image identifier to form the object name.
// Originals carry no suffix.
func (s Size) Suffix() string {
	switch s {
	case SizeDisplay:
		return "_w_1600"
	case SizeThumbnail:
		return "_w_400"
	default:
		return ""
	}
}

// MaxWidth bounds the rendition width in pixels. Zero means unbounded.
func (s Size) MaxWidth() int {
	switch s {
	case SizeDisplay:
		return 1600
	case SizeThumbnail:
		return 400
	default:
		return 0
	}
}

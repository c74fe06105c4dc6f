package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageExtension is the canonical extension of every published rendition.
const ImageExtension = ".jpg"

// Image is a published photo. The identifier derives the object name of every
// rendition.
type Image struct {
	RemoteUUID     uuid.UUID
	AvailableSizes []Size
}

// ID returns the 32-hex-digit form of the identifier stored in state.json.
func (i Image) ID() string {
	return strings.ReplaceAll(i.RemoteUUID.String(), "-", "")
}

// Has reports whether the given rendition was uploaded.
func (i Image) Has(size Size) bool {
	return slices.Contains(i.AvailableSizes, size)
}

// ObjectName returns the bucket key of the given rendition. Keys use the
// canonical hyphenated identifier, unlike state.json.
func (i Image) ObjectName(size Size) string {
	return i.RemoteUUID.String() + size.Suffix() + ImageExtension
}

// Best returns the preferred rendition if available, otherwise the largest
// available one.
func (i Image) Best(preferred Size) Size {
	if i.Has(preferred) {
		return preferred
	}
	for _, size := range Sizes {
		if i.Has(size) {
			return size
		}
	}
	return SizeOriginal
}

// Equal reports whether two images describe the same renditions.
func (i Image) Equal(other Image) bool {
	return i.RemoteUUID == other.RemoteUUID && slices.Equal(i.AvailableSizes, other.AvailableSizes)
}

// Album is an ordered set of images. NameDisplay is the natural key; NameNav
// is the path segment used by the generated site.
type Album struct {
	NameDisplay string
	NameNav     string
	Created     time.Time
	Images      []Image
}

// NewAlbum creates an empty album, deriving the slug from the display name.
// The creation time is truncated to the second precision state.json keeps.
func NewAlbum(display string, created time.Time) Album {
	return Album{
		NameDisplay: display,
		NameNav:     Slug(display),
		Created:     created.Truncate(time.Second),
		Images:      []Image{},
	}
}

// Slug derives the navigation-safe album name: lower-cased with spaces
// replaced by hyphens.
func Slug(display string) string {
	return strings.ReplaceAll(strings.ToLower(display), " ", "-")
}

// AddImage returns a copy of the album with image appended.
func (a Album) AddImage(image Image) Album {
	images := make([]Image, 0, len(a.Images)+1)
	images = append(images, a.Images...)
	a.Images = append(images, image)
	return a
}

// CreatedHuman formats the creation date for display, e.g. "Jan 25, 2018".
func (a Album) CreatedHuman() string {
	return a.Created.Format("Jan 02, 2006")
}

// Equal compares albums field by field; timestamps compare by instant.
func (a Album) Equal(other Album) bool {
	return a.NameDisplay == other.NameDisplay &&
		a.NameNav == other.NameNav &&
		a.Created.Equal(other.Created) &&
		slices.EqualFunc(a.Images, other.Images, Image.Equal)
}

// Overview is the root of the catalog. Display names are unique.
type Overview struct {
	Albums []Album
}

// Empty returns a catalog without albums.
func Empty() Overview {
	return Overview{Albums: []Album{}}
}

// AddOrReplaceAlbum returns a copy of the overview where any album sharing
// the display name of album is removed and album is appended.
func (o Overview) AddOrReplaceAlbum(album Album) Overview {
	albums := make([]Album, 0, len(o.Albums)+1)
	for _, existing := range o.Albums {
		if existing.NameDisplay != album.NameDisplay {
			albums = append(albums, existing)
		}
	}
	return Overview{Albums: append(albums, album)}
}

// AlbumByName returns the first album whose display name matches exactly.
func (o Overview) AlbumByName(name string) (Album, bool) {
	for _, album := range o.Albums {
		if album.NameDisplay == name {
			return album, true
		}
	}
	return Album{}, false
}

// ImageCount returns the total number of images across all albums.
func (o Overview) ImageCount() int {
	total := 0
	for _, album := range o.Albums {
		total += len(album.Images)
	}
	return total
}

// Equal compares overviews album by album, in order.
func (o Overview) Equal(other Overview) bool {
	return slices.EqualFunc(o.Albums, other.Albums, Album.Equal)
}

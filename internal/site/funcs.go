package site

import (
	"html/template"
	"strings"

	"pxl/internal/catalog"
)

func templateFuncs(baseURL string) template.FuncMap {
	base := strings.TrimRight(baseURL, "/")
	return template.FuncMap{
		"imageURL": func(img catalog.Image, size string) template.URL {
			return template.URL(ImageURL(base, img, catalog.Size(size)))
		},
		"cover": func(album catalog.Album) *catalog.Image {
			if len(album.Images) == 0 {
				return nil
			}
			return &album.Images[0]
		},
	}
}

// ImageURL returns the public URL of a rendition, falling back to the
// largest rendition the image has when the requested one was never uploaded.
func ImageURL(baseURL string, img catalog.Image, size catalog.Size) string {
	name := img.ObjectName(img.Best(size))
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		return name
	}
	return base + "/" + name
}

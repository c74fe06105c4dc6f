package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ErrCorruptedCatalog reports a state document that fails strict decoding.
var ErrCorruptedCatalog = errors.New("corrupted catalog")

const (
	timestampLayout = time.RFC3339
	// legacyLayout is the offset-less form written by older clients.
	legacyLayout = "2006-01-02T15:04:05"
)

var hexToken = regexp.MustCompile(`^[0-9a-f]{32}$`)

type overviewJSON struct {
	Albums *[]json.RawMessage `json:"albums"`
}

type albumJSON struct {
	NameDisplay *string            `json:"name_display"`
	NameNav     *string            `json:"name_nav"`
	Created     *string            `json:"created"`
	Images      *[]json.RawMessage `json:"images"`
}

type imageJSON struct {
	RemoteUUID     *string   `json:"remote_uuid"`
	AvailableSizes *[]string `json:"available_sizes"`
	// LegacySizes is the misspelled key some early clients wrote.
	LegacySizes *[]string `json:"avaialble_sizes,omitempty"`
}

type overviewOut struct {
	Albums []albumOut `json:"albums"`
}

type albumOut struct {
	NameDisplay string     `json:"name_display"`
	NameNav     string     `json:"name_nav"`
	Created     string     `json:"created"`
	Images      []imageOut `json:"images"`
}

type imageOut struct {
	RemoteUUID     string   `json:"remote_uuid"`
	AvailableSizes []string `json:"available_sizes"`
}

// Encode serializes the overview to its canonical JSON form.
func Encode(o Overview) ([]byte, error) {
	out := overviewOut{Albums: make([]albumOut, 0, len(o.Albums))}
	for _, album := range o.Albums {
		a := albumOut{
			NameDisplay: album.NameDisplay,
			NameNav:     album.NameNav,
			Created:     album.Created.Format(timestampLayout),
			Images:      make([]imageOut, 0, len(album.Images)),
		}
		for _, image := range album.Images {
			sizes := make([]string, 0, len(image.AvailableSizes))
			for _, size := range image.AvailableSizes {
				sizes = append(sizes, string(size))
			}
			a.Images = append(a.Images, imageOut{RemoteUUID: image.ID(), AvailableSizes: sizes})
		}
		out.Albums = append(out.Albums, a)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a state document. Any missing or malformed required field
// fails the whole document with ErrCorruptedCatalog.
func Decode(data []byte) (Overview, error) {
	var raw overviewJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Overview{}, corrupted("", err)
	}
	if raw.Albums == nil {
		return Overview{}, corrupted("", errors.New(`missing field "albums"`))
	}

	albums := make([]Album, 0, len(*raw.Albums))
	for i, msg := range *raw.Albums {
		album, err := decodeAlbum(msg)
		if err != nil {
			return Overview{}, corrupted(fmt.Sprintf("albums[%d]", i), err)
		}
		albums = append(albums, album)
	}
	return Overview{Albums: albums}, nil
}

func decodeAlbum(msg json.RawMessage) (Album, error) {
	var raw albumJSON
	if err := json.Unmarshal(msg, &raw); err != nil {
		return Album{}, err
	}
	switch {
	case raw.NameDisplay == nil:
		return Album{}, errors.New(`missing field "name_display"`)
	case raw.NameNav == nil:
		return Album{}, errors.New(`missing field "name_nav"`)
	case raw.Created == nil:
		return Album{}, errors.New(`missing field "created"`)
	case raw.Images == nil:
		return Album{}, errors.New(`missing field "images"`)
	}

	created, err := parseTimestamp(*raw.Created)
	if err != nil {
		return Album{}, err
	}

	images := make([]Image, 0, len(*raw.Images))
	for i, imgMsg := range *raw.Images {
		image, err := decodeImage(imgMsg)
		if err != nil {
			return Album{}, fmt.Errorf("images[%d]: %w", i, err)
		}
		images = append(images, image)
	}

	return Album{
		NameDisplay: *raw.NameDisplay,
		NameNav:     *raw.NameNav,
		Created:     created,
		Images:      images,
	}, nil
}

func decodeImage(msg json.RawMessage) (Image, error) {
	var raw imageJSON
	if err := json.Unmarshal(msg, &raw); err != nil {
		return Image{}, err
	}
	if raw.RemoteUUID == nil {
		return Image{}, errors.New(`missing field "remote_uuid"`)
	}
	if !hexToken.MatchString(*raw.RemoteUUID) {
		return Image{}, fmt.Errorf("remote_uuid %q is not a 32-hex-digit token", *raw.RemoteUUID)
	}
	id, err := uuid.Parse(*raw.RemoteUUID)
	if err != nil {
		return Image{}, fmt.Errorf("remote_uuid: %w", err)
	}

	names := raw.AvailableSizes
	if names == nil {
		names = raw.LegacySizes
	}
	if names == nil {
		return Image{}, errors.New(`missing field "available_sizes"`)
	}
	sizes := make([]Size, 0, len(*names))
	for _, name := range *names {
		size, err := ParseSize(name)
		if err != nil {
			return Image{}, err
		}
		sizes = append(sizes, size)
	}
	return Image{RemoteUUID: id, AvailableSizes: sizes}, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(timestampLayout, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(legacyLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("created %q is not an ISO-8601 timestamp", value)
	}
	return t, nil
}

func corrupted(path string, err error) error {
	if path == "" {
		return fmt.Errorf("%w: %w", ErrCorruptedCatalog, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrCorruptedCatalog, path, err)
}

// Package media validates uploaded files and turns them into raster images
// that can be sent to the search service.
package media

import (
	"context"
	"detector/pkg/serrors"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	TypeJPEG = "image/jpeg"
	TypePNG  = "image/png"
	TypeGIF  = "image/gif"
	TypeWEBP = "image/webp"
	TypePDF  = "application/pdf"
)

// allowed maps accepted media types (and aliases) to their canonical form.
var allowed = map[string]string{ //nolint: gochecknoglobals
	TypeJPEG:    TypeJPEG,
	"image/jpg": TypeJPEG,
	TypePNG:     TypePNG,
	TypeGIF:     TypeGIF,
	TypeWEBP:    TypeWEBP,
	TypePDF:     TypePDF,
}

// Image is one raster image ready for search.
type Image struct {
	Data      []byte
	MediaType string
}

// Rasterizer converts a PDF document into page images.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([]Image, error)
}

// Validate checks content against the accepted media types and returns the
// canonical type. The type is sniffed from content; the declared type is only
// used in error messages. Empty content is a bad request and a type outside
// the accepted set is unsupported media.
func Validate(declared string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", serrors.With(serrors.ErrBadRequest, "file is empty")
	}

	detected := canonical(mimetype.Detect(content).String())
	if t, ok := allowed[detected]; ok {
		return t, nil
	}

	shown := canonical(declared)
	if shown == "" || shown == "application/octet-stream" {
		shown = detected
	}

	return "", serrors.With(serrors.ErrUnsupportedMedia, "unsupported file type: %s", shown)
}

// Allowed reports whether mediaType is accepted.
func Allowed(mediaType string) bool {
	_, ok := allowed[canonical(mediaType)]

	return ok
}

// Normalize returns the images to search for content of the given canonical
// media type. PDFs are rasterized with r; other types pass through.
func Normalize(ctx context.Context, content []byte, mediaType string, r Rasterizer) ([]Image, error) {
	if mediaType != TypePDF {
		return []Image{{Data: content, MediaType: mediaType}}, nil
	}

	if r == nil {
		return nil, serrors.With(serrors.ErrUnsupportedMedia, "pdf conversion is not available")
	}

	pages, err := r.Rasterize(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("could not convert pdf: %w", err)
	}
	if len(pages) == 0 {
		return nil, serrors.With(serrors.ErrUnreadableInput, "the pdf has no renderable pages")
	}

	return pages, nil
}

func canonical(mediaType string) string {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mediaType))
	}

	return mt
}

package classifier

import (
	"net/url"
	"path"
	"strings"
)

// imageExtensions lists raster (and svg/ico) file extensions that mark a URL as
// a bare image file.
var imageExtensions = map[string]struct{}{ //nolint: gochecknoglobals
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".bmp": {},
	".svg": {}, ".ico": {}, ".tiff": {}, ".tif": {}, ".avif": {}, ".heic": {},
	".heif": {}, ".jfif": {}, ".pjpeg": {}, ".pjp": {},
}

// ExtractDomain returns the lower-cased host of rawURL without port and
// without a leading "www.". It returns "" when rawURL has no parseable host.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}

	return normalizeDomain(u.Hostname())
}

// IsImageFile reports whether the path of rawURL ends in a known image
// extension. The query string is ignored.
func IsImageFile(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}

	_, ok := imageExtensions[strings.ToLower(path.Ext(u.Path))]

	return ok
}

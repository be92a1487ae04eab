package classifier

import (
	"net"
	"net/url"
	"path"
	"sort"
	"strings"
)

// CanonicalURL returns the form of rawURL used to tell whether two search
// hits point at the same page:
//   - scheme and host are lower-cased
//   - default ports (http:80, https:443) are dropped
//   - the path is cleaned, with no trailing slash except for the root
//   - query parameters are sorted by key and value
//   - the fragment is removed
//
// Input that does not parse as an absolute URL is returned trimmed.
func CanonicalURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Fragment = ""
	u.RawFragment = ""

	host := strings.ToLower(u.Host)
	if h, port, err := net.SplitHostPort(host); err == nil {
		if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
			host = h
			if strings.Contains(h, ":") {
				host = "[" + h + "]"
			}
		}
	}
	u.Host = host

	p := path.Clean("/" + u.Path)
	if p != "/" {
		p = strings.TrimRight(p, "/")
	}
	u.Path = p
	u.RawPath = ""

	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			sort.Strings(q[k])
		}
		// Encode sorts keys
		u.RawQuery = q.Encode()
	}

	return u.String()
}

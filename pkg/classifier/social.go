package classifier

import (
	"fmt"
	"net/url"
	"strings"
)

// SocialInfo describes a recognized social platform URL.
type SocialInfo struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle,omitempty"`
	PostID   string `json:"postId,omitempty"`
	Profile  bool   `json:"profile,omitempty"`
	// Description is a short human-readable summary handed to the judgment model.
	Description string `json:"description"`
}

const (
	PlatformInstagram = "Instagram"
	PlatformX         = "X (Twitter)"
	PlatformTikTok    = "TikTok"
)

// ExtractSocialInfo recognizes post, story and profile URL shapes of
// Instagram, X/Twitter and TikTok. The second return value is false when the
// URL does not match any known shape.
func ExtractSocialInfo(rawURL string) (SocialInfo, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return SocialInfo{}, false
	}

	host := normalizeDomain(u.Hostname())
	parts := pathParts(u.Path)
	if len(parts) == 0 {
		return SocialInfo{}, false
	}

	switch {
	case hostIs(host, "instagram.com"):
		return instagramInfo(parts)
	case hostIs(host, "twitter.com"), hostIs(host, "x.com"):
		return xInfo(parts)
	case hostIs(host, "tiktok.com"):
		return tiktokInfo(parts)
	default:
		return SocialInfo{}, false
	}
}

func instagramInfo(parts []string) (SocialInfo, bool) {
	switch {
	case (parts[0] == "p" || parts[0] == "reel") && len(parts) > 1:
		return SocialInfo{
			Platform:    PlatformInstagram,
			PostID:      parts[1],
			Description: fmt.Sprintf("Instagram post (id %s)", parts[1]),
		}, true
	case parts[0] == "stories" && len(parts) > 1:
		return SocialInfo{
			Platform:    PlatformInstagram,
			Handle:      parts[1],
			Description: fmt.Sprintf("Instagram story (@%s)", parts[1]),
		}, true
	case !strings.Contains(parts[0], "."):
		return SocialInfo{
			Platform:    PlatformInstagram,
			Handle:      parts[0],
			Profile:     true,
			Description: fmt.Sprintf("Instagram profile (@%s)", parts[0]),
		}, true
	default:
		return SocialInfo{}, false
	}
}

func xInfo(parts []string) (SocialInfo, bool) {
	switch {
	case len(parts) > 2 && parts[1] == "status":
		return SocialInfo{
			Platform:    PlatformX,
			Handle:      parts[0],
			PostID:      parts[2],
			Description: fmt.Sprintf("X post (@%s, id %s)", parts[0], parts[2]),
		}, true
	case len(parts) == 1:
		return SocialInfo{
			Platform:    PlatformX,
			Handle:      parts[0],
			Profile:     true,
			Description: fmt.Sprintf("X profile (@%s)", parts[0]),
		}, true
	default:
		return SocialInfo{}, false
	}
}

func tiktokInfo(parts []string) (SocialInfo, bool) {
	handle, ok := strings.CutPrefix(parts[0], "@")
	if !ok || handle == "" {
		return SocialInfo{}, false
	}

	if len(parts) > 2 && parts[1] == "video" {
		return SocialInfo{
			Platform:    PlatformTikTok,
			Handle:      handle,
			PostID:      parts[2],
			Description: fmt.Sprintf("TikTok video (@%s, id %s)", handle, parts[2]),
		}, true
	}

	return SocialInfo{
		Platform:    PlatformTikTok,
		Handle:      handle,
		Profile:     true,
		Description: fmt.Sprintf("TikTok profile (@%s)", handle),
	}, true
}

// hostIs reports whether host is base or one of its subdomains.
func hostIs(host, base string) bool {
	return host == base || strings.HasSuffix(host, "."+base)
}

func pathParts(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}

	return out
}

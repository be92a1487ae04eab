package classifier_test

import (
	"detector/pkg/classifier"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractDomain(t *testing.T) {
	tests := map[string]string{
		"https://www.shueisha.co.jp/xyz": "shueisha.co.jp",
		"https://WWW.Example.COM:8443/a":  "example.com",
		"https://sub.example.com":         "sub.example.com",
		"not a url":                       "",
		"":                                "",
	}

	for in, want := range tests {
		require.Equal(t, want, classifier.ExtractDomain(in), in)
	}
}

func TestIsImageFile(t *testing.T) {
	yes := []string{
		"https://example.com/a.jpg",
		"https://example.com/dir/b.JPEG",
		"https://example.com/c.png?size=large",
		"https://example.com/d.webp#frag",
		"https://example.com/e.avif",
		"https://example.com/f.jfif",
		"https://example.com/g.tif",
	}
	no := []string{
		"https://example.com/page.html",
		"https://example.com/jpg",
		"https://example.com/?file=a.png",
		"a.png",
		"",
	}

	for _, u := range yes {
		require.True(t, classifier.IsImageFile(u), u)
	}
	for _, u := range no {
		require.False(t, classifier.IsImageFile(u), u)
	}
}

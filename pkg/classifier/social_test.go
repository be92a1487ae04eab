package classifier_test

import (
	"detector/pkg/classifier"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractSocialInfo(t *testing.T) {
	tests := []struct {
		url  string
		want classifier.SocialInfo
		ok   bool
	}{
		{
			url:  "https://www.instagram.com/p/C0abc/",
			want: classifier.SocialInfo{Platform: classifier.PlatformInstagram, PostID: "C0abc"},
			ok:   true,
		},
		{
			url:  "https://instagram.com/stories/reader/",
			want: classifier.SocialInfo{Platform: classifier.PlatformInstagram, Handle: "reader"},
			ok:   true,
		},
		{
			url:  "https://instagram.com/reader",
			want: classifier.SocialInfo{Platform: classifier.PlatformInstagram, Handle: "reader", Profile: true},
			ok:   true,
		},
		{
			url:  "https://x.com/someone/status/12345",
			want: classifier.SocialInfo{Platform: classifier.PlatformX, Handle: "someone", PostID: "12345"},
			ok:   true,
		},
		{
			url:  "https://mobile.twitter.com/someone",
			want: classifier.SocialInfo{Platform: classifier.PlatformX, Handle: "someone", Profile: true},
			ok:   true,
		},
		{
			url:  "https://www.tiktok.com/@dancer/video/777",
			want: classifier.SocialInfo{Platform: classifier.PlatformTikTok, Handle: "dancer", PostID: "777"},
			ok:   true,
		},
		{
			url:  "https://www.tiktok.com/@dancer",
			want: classifier.SocialInfo{Platform: classifier.PlatformTikTok, Handle: "dancer", Profile: true},
			ok:   true,
		},
		{url: "https://x.com/someone/likes/extra"},
		{url: "https://www.tiktok.com/discover"},
		{url: "https://box.com/someone"},
		{url: "https://instagram.com/"},
		{url: "::"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := classifier.ExtractSocialInfo(tt.url)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			require.NotEmpty(t, got.Description)
			got.Description = ""
			require.Equal(t, tt.want, got)
		})
	}
}

package classifier_test

import (
	"detector/pkg/classifier"
	"detector/pkg/domain"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLists() classifier.Lists {
	return classifier.Lists{
		PremiumOfficial:    []string{"premium-books.example"},
		Official:           []string{"shueisha.co.jp", "amazon.co.jp"},
		SNS:                []string{"x.com", "instagram.com"},
		Suspicious:         []string{"mangaraw", "premium-books.example"},
		ImageShare:         []string{"imgur.com"},
		UnofficialViewer:   []string{"mangadex.org"},
		ArtSite:            []string{"pixiv.net"},
		Forum:              []string{"5ch.net"},
		TextSearchPatterns: []string{"/search", "?q="},
		IllegalKeywords:    []string{"torrent"},
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := classifier.New(testLists())

	tests := []struct {
		url  string
		want domain.Classification
	}{
		{url: "https://premium-books.example/title/1", want: domain.ClassificationPremiumOfficial},
		{url: "https://www.shueisha.co.jp/xyz", want: domain.ClassificationOfficial},
		{url: "https://books.SHUEISHA.co.jp/", want: domain.ClassificationOfficial},
		{url: "https://x.com/someone/status/1", want: domain.ClassificationSNS},
		{url: "https://mangaraw.example.net/vol1", want: domain.ClassificationSuspicious},
		{url: "https://blog.example.org/post", want: domain.ClassificationUnofficial},
		{url: "not a url", want: domain.ClassificationUnofficial},
		{url: "", want: domain.ClassificationUnofficial},
		{url: "://broken", want: domain.ClassificationUnofficial},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := c.Classify(tt.url)
			require.Equal(t, tt.want, got)
			require.Equal(t, got, c.Classify(tt.url), "classification must be deterministic")
		})
	}
}

func TestClassifier_PrecedencePremiumOverSuspicious(t *testing.T) {
	c := classifier.New(testLists())

	// premium-books.example is listed both as premium-official and suspicious.
	require.Equal(t, domain.ClassificationPremiumOfficial, c.ClassifyDomain("premium-books.example"))
}

func TestClassifier_EmptyLists(t *testing.T) {
	c := classifier.New(classifier.Lists{})

	require.Equal(t, domain.ClassificationUnofficial, c.Classify("https://shueisha.co.jp"))
	require.Equal(t, domain.DomainTypeOther, c.DomainType("x.com"))
	require.False(t, c.IsTextSearchPage("https://example.com/search?q=a"))
}

func TestInitialJudgment(t *testing.T) {
	require.Equal(t, domain.JudgmentClear, classifier.InitialJudgment(domain.ClassificationPremiumOfficial))
	require.Equal(t, domain.JudgmentClear, classifier.InitialJudgment(domain.ClassificationOfficial))
	require.Equal(t, domain.JudgmentSuspicious, classifier.InitialJudgment(domain.ClassificationSNS))
	require.Equal(t, domain.JudgmentSuspicious, classifier.InitialJudgment(domain.ClassificationSuspicious))
	require.Equal(t, domain.JudgmentSuspicious, classifier.InitialJudgment(domain.ClassificationUnofficial))
}

func TestClassifier_InitialJudgmentForURL(t *testing.T) {
	c := classifier.New(testLists())

	require.Equal(t, domain.JudgmentUnknown, c.InitialJudgmentForURL("https://i.imgur.com/abc.JPG"))
	require.Equal(t, domain.JudgmentUnknown, c.InitialJudgmentForURL("https://pbs.x.com/media/a.webp?name=large"))
	require.Equal(t, domain.JudgmentClear, c.InitialJudgmentForURL("https://www.shueisha.co.jp/cover.png"))
	require.Equal(t, domain.JudgmentSuspicious, c.InitialJudgmentForURL("https://blog.example.org/post"))
}

func TestClassifier_DomainType(t *testing.T) {
	c := classifier.New(testLists())

	require.Equal(t, domain.DomainTypeSNS, c.DomainType("www.x.com"))
	require.Equal(t, domain.DomainTypeImageShare, c.DomainType("i.imgur.com"))
	require.Equal(t, domain.DomainTypeUnofficialViewer, c.DomainType("mangadex.org"))
	require.Equal(t, domain.DomainTypeArtSite, c.DomainType("pixiv.net"))
	require.Equal(t, domain.DomainTypeForum, c.DomainType("egg.5ch.net"))
	require.Equal(t, domain.DomainTypeOther, c.DomainType("example.com"))
}

func TestClassifier_IsTextSearchPage(t *testing.T) {
	c := classifier.New(testLists())

	require.True(t, c.IsTextSearchPage("https://example.com/search/comics"))
	require.True(t, c.IsTextSearchPage("https://example.com/list?q=one+piece"))
	require.False(t, c.IsTextSearchPage("https://example.com/gallery/123"))
}

func TestClassifier_ConcurrentUse(t *testing.T) {
	c := classifier.New(testLists())

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := fmt.Sprintf("https://www.shueisha.co.jp/%d", i)
			require.Equal(t, domain.ClassificationOfficial, c.Classify(u))
			require.Equal(t, domain.ClassificationSNS, c.Classify("https://x.com/a"))
		}()
	}
	wg.Wait()
}

func TestIllegalKeywords_Copy(t *testing.T) {
	c := classifier.New(testLists())

	kw := c.IllegalKeywords()
	kw[0] = "changed"
	require.Equal(t, []string{"torrent"}, c.IllegalKeywords())
}

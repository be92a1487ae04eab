// Package classifier maps candidate URLs to a static classification using
// substring matching against injected domain lists. Each list is compiled
// into an Aho-Corasick automaton once, so a Classifier is immutable and safe
// for concurrent use.
package classifier

import (
	"detector/pkg/domain"
	"net/url"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// matcher reports whether any of its entries occurs in an input string.
type matcher struct {
	m *ahocorasick.Matcher
}

func newMatcher(entries []string) matcher {
	normalized := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		normalized = append(normalized, e)
	}
	if len(normalized) == 0 {
		return matcher{}
	}

	return matcher{m: ahocorasick.NewStringMatcher(normalized)}
}

func (m matcher) contains(s string) bool {
	if m.m == nil || s == "" {
		return false
	}

	// Match keeps per-call state inside the automaton; MatchThreadSafe does not.
	return len(m.m.MatchThreadSafe([]byte(s))) > 0
}

// Classifier classifies URLs and domains. The zero value is not usable; use New.
type Classifier struct {
	premiumOfficial matcher
	official        matcher
	sns             matcher
	suspicious      matcher

	imageShare       matcher
	unofficialViewer matcher
	artSite          matcher
	forum            matcher

	textSearch matcher

	illegalKeywords []string
}

// New compiles lists into a Classifier.
func New(lists Lists) *Classifier {
	return &Classifier{
		premiumOfficial:  newMatcher(lists.PremiumOfficial),
		official:         newMatcher(lists.Official),
		sns:              newMatcher(lists.SNS),
		suspicious:       newMatcher(lists.Suspicious),
		imageShare:       newMatcher(lists.ImageShare),
		unofficialViewer: newMatcher(lists.UnofficialViewer),
		artSite:          newMatcher(lists.ArtSite),
		forum:            newMatcher(lists.Forum),
		textSearch:       newMatcher(lists.TextSearchPatterns),
		illegalKeywords:  append([]string(nil), lists.IllegalKeywords...),
	}
}

// Classify returns the classification of rawURL. Lists are checked in the
// order premium-official, official, sns, suspicious; the first match wins and
// anything else (including unparseable URLs) is unofficial.
func (c *Classifier) Classify(rawURL string) domain.Classification {
	return c.ClassifyDomain(ExtractDomain(rawURL))
}

// ClassifyDomain is Classify for an already extracted domain.
func (c *Classifier) ClassifyDomain(d string) domain.Classification {
	d = normalizeDomain(d)

	switch {
	case c.premiumOfficial.contains(d):
		return domain.ClassificationPremiumOfficial
	case c.official.contains(d):
		return domain.ClassificationOfficial
	case c.sns.contains(d):
		return domain.ClassificationSNS
	case c.suspicious.contains(d):
		return domain.ClassificationSuspicious
	default:
		return domain.ClassificationUnofficial
	}
}

// InitialJudgment maps a classification to the judgment assigned before any
// external analysis.
func InitialJudgment(class domain.Classification) domain.Judgment {
	switch class {
	case domain.ClassificationPremiumOfficial, domain.ClassificationOfficial:
		return domain.JudgmentClear
	default:
		return domain.JudgmentSuspicious
	}
}

// InitialJudgmentForURL is InitialJudgment with the image file rule applied:
// a non-official URL pointing directly at an image file is indeterminate.
func (c *Classifier) InitialJudgmentForURL(rawURL string) domain.Judgment {
	class := c.Classify(rawURL)
	if class != domain.ClassificationPremiumOfficial && class != domain.ClassificationOfficial && IsImageFile(rawURL) {
		return domain.JudgmentUnknown
	}

	return InitialJudgment(class)
}

// DomainType returns a descriptive category for d.
func (c *Classifier) DomainType(d string) domain.DomainType {
	d = normalizeDomain(d)

	switch {
	case c.sns.contains(d):
		return domain.DomainTypeSNS
	case c.imageShare.contains(d):
		return domain.DomainTypeImageShare
	case c.unofficialViewer.contains(d):
		return domain.DomainTypeUnofficialViewer
	case c.artSite.contains(d):
		return domain.DomainTypeArtSite
	case c.forum.contains(d):
		return domain.DomainTypeForum
	default:
		return domain.DomainTypeOther
	}
}

// IsTextSearchPage reports whether rawURL looks like a text search results
// page. It is a best-effort heuristic driven by the configured patterns.
func (c *Classifier) IsTextSearchPage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	target := strings.ToLower(u.EscapedPath())
	if u.RawQuery != "" {
		target += "?" + strings.ToLower(u.RawQuery)
	}

	return c.textSearch.contains(target)
}

// IllegalKeywords returns the keywords the judgment model should look for.
func (c *Classifier) IllegalKeywords() []string {
	return append([]string(nil), c.illegalKeywords...)
}

func normalizeDomain(d string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "www.")
}

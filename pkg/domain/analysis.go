package domain

import "time"

// Classification is the static category a domain falls into.
type Classification string

const (
	ClassificationPremiumOfficial Classification = "premium-official"
	ClassificationOfficial        Classification = "official"
	ClassificationSNS             Classification = "sns"
	ClassificationSuspicious      Classification = "suspicious"
	ClassificationUnofficial      Classification = "unofficial"
)

// DomainType is a descriptive category of a domain, used for display and for
// giving the judgment model a hint about the kind of site.
type DomainType string

const (
	DomainTypeSNS              DomainType = "sns"
	DomainTypeImageShare       DomainType = "image-share"
	DomainTypeUnofficialViewer DomainType = "unofficial-viewer"
	DomainTypeArtSite          DomainType = "art-site"
	DomainTypeForum            DomainType = "forum"
	DomainTypeOther            DomainType = "other"
)

// MatchType tags how strongly the search service matched a candidate URL.
type MatchType string

const (
	MatchTypeExact   MatchType = "exact"
	MatchTypePartial MatchType = "partial"
	MatchTypeRelated MatchType = "related"
)

// Candidate is a URL returned by reverse image search. Only the search
// gateway creates candidates; later stages annotate them through
// AnalysisRecord.
type Candidate struct {
	URL       string    `json:"url"`
	Domain    string    `json:"domain"`
	MatchType MatchType `json:"matchType"`
}

// AnalysisRecord bundles everything known about one candidate URL once its
// analysis has resolved.
type AnalysisRecord struct {
	URL             string         `json:"url"`
	Domain          string         `json:"domain"`
	DomainType      DomainType     `json:"domainType,omitempty"`
	Classification  Classification `json:"classification"`
	InitialJudgment Judgment       `json:"initialJudgment"`
	Judgment        Judgment       `json:"judgment"`
	Reason          string         `json:"reason"`
	// Note is an optional supplement returned by the judgment model.
	Note      string    `json:"note,omitempty"`
	MatchType MatchType `json:"matchType"`
}

// ProcessingResult is the overall outcome for one item. Exactly one is
// produced per processed item, on both success and failure paths.
type ProcessingResult struct {
	Judgment  Judgment         `json:"judgment"`
	Reason    string           `json:"reason"`
	Records   []AnalysisRecord `json:"records"`
	Timestamp time.Time        `json:"timestamp"`
}

// Similarity is the outcome of comparing the uploaded image with a candidate.
type Similarity string

const (
	SimilarityIdentical Similarity = "identical"
	SimilaritySimilar   Similarity = "similar"
	SimilarityDifferent Similarity = "different"
	SimilarityUnknown   Similarity = "unknown"
)

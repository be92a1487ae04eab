// Package judge defines the contract of the external judgment service: a
// generative model that reads a candidate page (or compares images) and
// answers with a verdict.
//
//go:generate mockgen -package mockjudge -source=interface.go -destination=mock/mockjudge.go *
package judge

import (
	"context"
	"detector/pkg/classifier"
	"detector/pkg/domain"
)

// ContentRequest describes a candidate URL to judge.
type ContentRequest struct {
	URL        string
	Domain     string
	DomainType domain.DomainType
	// PageTitle and PageText are optional extracts of the candidate page.
	PageTitle string
	PageText  string
	// Social marks the URL as belonging to a social platform; SocialInfo is set
	// when the URL shape was recognized.
	Social     bool
	SocialInfo *classifier.SocialInfo
}

// ContentJudgment is the parsed verdict for a ContentRequest.
type ContentJudgment struct {
	Judgment domain.Judgment
	Reason   string
	Note     string
}

// ImageComparisonRequest asks whether the candidate shows the uploaded image.
type ImageComparisonRequest struct {
	Original          []byte
	OriginalMediaType string
	CandidateURL      string
	// Reference is an optional image taken from the candidate page.
	Reference          []byte
	ReferenceMediaType string
}

// Comparison is the parsed result of an ImageComparisonRequest.
type Comparison struct {
	Similarity domain.Similarity
	Reason     string
}

// ShouldAnalyzeFurther is false only when the images are judged different.
func (c Comparison) ShouldAnalyzeFurther() bool {
	return c.Similarity != domain.SimilarityDifferent
}

// Client is implemented by judgment service adapters. Implementations make a
// single attempt per call. A reply that cannot be parsed degrades to an
// indeterminate result instead of an error.
type Client interface {
	JudgeContent(ctx context.Context, req ContentRequest) (ContentJudgment, error)
	CompareImages(ctx context.Context, req ImageComparisonRequest) (Comparison, error)
}

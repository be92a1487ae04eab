// Package websearch defines the contract of the reverse image search service.
//
//go:generate mockgen -package mockwebsearch -source=interface.go -destination=mock/mockwebsearch.go *
package websearch

import (
	"context"
	"detector/pkg/domain"
)

// RelatedThreshold is the number of distinct exact and partial matches below
// which pages with matching images are added as related candidates.
const RelatedThreshold = 5

// Client is implemented by search service adapters. Search makes exactly one
// request. An empty result with a nil error means nothing matched; failures
// are always reported through the error.
type Client interface {
	Search(ctx context.Context, image []byte) ([]domain.Candidate, error)
}

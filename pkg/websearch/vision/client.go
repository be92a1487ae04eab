// Package vision provides a websearch.Client backed by the Google Cloud Vision
// images:annotate endpoint with the WEB_DETECTION feature.
package vision

import (
	"bytes"
	"context"
	"detector/pkg/classifier"
	"detector/pkg/domain"
	"detector/pkg/metrics"
	"detector/pkg/serrors"
	"detector/pkg/websearch"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultEndpoint is the public Vision API base URL.
	DefaultEndpoint = "https://vision.googleapis.com/v1"
	// DefaultMaxResults is the number of web detection results requested.
	DefaultMaxResults = 100

	// codeInvalidArgument is the google.rpc.Code returned for unreadable images.
	codeInvalidArgument = 3

	tracerName = "detector/pkg/websearch/vision"
)

// TextSearchFilter reports whether a related page looks like a text search
// result. *classifier.Classifier implements it.
type TextSearchFilter interface {
	IsTextSearchPage(rawURL string) bool
}

// Options configure the client.
type Options struct {
	// APIKey is required at call time; a missing key is a configuration error.
	APIKey     string
	Endpoint   string
	MaxResults int
	// Filter, when set, drops related pages that look like text search results.
	Filter TextSearchFilter
}

// Client calls the Vision API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	opts       Options
	recorder   *metrics.GatewayRecorder
}

var _ websearch.Client = (*Client)(nil)

// New creates a client.
func New(httpClient *http.Client, opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	return &Client{
		httpClient: httpClient,
		opts:       opts,
		recorder:   metrics.NewGatewayRecorder("vision"),
	}
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type imageRequest struct {
	Image struct {
		Content string `json:"content"`
	} `json:"image"`
	Features     []feature `json:"features"`
	ImageContext struct {
		WebDetectionParams struct {
			IncludeGeoResults bool `json:"includeGeoResults"`
		} `json:"webDetectionParams"`
	} `json:"imageContext"`
}

type webImage struct {
	URL string `json:"url"`
}

// WebDetection is the subset of the Vision web detection payload in use.
type WebDetection struct {
	FullMatchingImages      []webImage `json:"fullMatchingImages"`
	PartialMatchingImages   []webImage `json:"partialMatchingImages"`
	PagesWithMatchingImages []struct {
		URL       string `json:"url"`
		PageTitle string `json:"pageTitle"`
	} `json:"pagesWithMatchingImages"`
}

type rpcStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type annotateResponse struct {
	Responses []struct {
		WebDetection *WebDetection `json:"webDetection"`
		Error        *rpcStatus    `json:"error"`
	} `json:"responses"`
	Error *rpcStatus `json:"error"`
}

// Search submits image and returns the normalized candidates.
func (c *Client) Search(ctx context.Context, image []byte) (candidates []domain.Candidate, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "vision.Search", trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("candidates", len(candidates)))
		span.End()
	}()

	if c.opts.APIKey == "" {
		return nil, serrors.With(serrors.ErrConfiguration, "vision api key is not configured")
	}
	if len(image) == 0 {
		return nil, serrors.With(serrors.ErrBadRequest, "image is empty")
	}

	start := time.Now()
	defer func() { c.recorder.Record(ctx, "search", start, err) }()

	var ir imageRequest
	ir.Image.Content = base64.StdEncoding.EncodeToString(image)
	ir.Features = []feature{{Type: "WEB_DETECTION", MaxResults: c.opts.MaxResults}}
	ir.ImageContext.WebDetectionParams.IncludeGeoResults = false

	body, err := json.Marshal(annotateRequest{Requests: []imageRequest{ir}})
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		strings.TrimRight(c.opts.Endpoint, "/")+"/images:annotate",
		bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.opts.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUpstream, err, "could not send vision request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUpstream, err, "could not read vision response")
	}

	var ar annotateResponse
	decodeErr := json.Unmarshal(b, &ar)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(b))
		if decodeErr == nil && ar.Error != nil && ar.Error.Message != "" {
			msg = ar.Error.Message
		}

		return nil, serrors.With(serrors.ErrUpstream, "vision request failed (status %d): %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, serrors.Wrap(serrors.ErrUpstream, decodeErr, "could not decode vision response")
	}
	if len(ar.Responses) == 0 {
		return nil, nil
	}

	first := ar.Responses[0]
	if first.Error != nil {
		if first.Error.Code == codeInvalidArgument {
			return nil, serrors.With(serrors.ErrUnreadableInput,
				"the image could not be read, please try another image")
		}

		return nil, serrors.With(serrors.ErrUpstream, "vision error: %s", first.Error.Message)
	}
	if first.WebDetection == nil {
		return nil, nil
	}

	return Normalize(first.WebDetection, c.opts.Filter), nil
}

// Normalize merges full matches (exact) and partial matches (partial) into a
// list deduplicated by classifier.CanonicalURL, keeping the first provenance
// and spelling seen for a URL. When fewer
// than websearch.RelatedThreshold URLs result, pages with matching images are
// appended as related, skipping those rejected by filter.
func Normalize(wd *WebDetection, filter TextSearchFilter) []domain.Candidate {
	seen := make(map[string]struct{})
	var out []domain.Candidate

	add := func(rawURL string, mt domain.MatchType) {
		rawURL = strings.TrimSpace(rawURL)
		if rawURL == "" {
			return
		}
		key := classifier.CanonicalURL(rawURL)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, domain.Candidate{
			URL:       rawURL,
			Domain:    classifier.ExtractDomain(rawURL),
			MatchType: mt,
		})
	}

	for _, img := range wd.FullMatchingImages {
		add(img.URL, domain.MatchTypeExact)
	}
	for _, img := range wd.PartialMatchingImages {
		add(img.URL, domain.MatchTypePartial)
	}

	if len(out) < websearch.RelatedThreshold {
		for _, page := range wd.PagesWithMatchingImages {
			if filter != nil && filter.IsTextSearchPage(page.URL) {
				continue
			}
			add(page.URL, domain.MatchTypeRelated)
		}
	}

	return out
}

package vision_test

import (
	"context"
	"detector/pkg/classifier"
	"detector/pkg/domain"
	"detector/pkg/serrors"
	"detector/pkg/websearch/vision"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(fn rtFunc, filter vision.TextSearchFilter) *vision.Client {
	return vision.New(&http.Client{Transport: fn}, vision.Options{APIKey: "test-key", Filter: filter})
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestClient_Search_success(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "vision.googleapis.com", r.URL.Host)
		require.Equal(t, "/v1/images:annotate", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))

		var sent struct {
			Requests []struct {
				Image struct {
					Content string `json:"content"`
				} `json:"image"`
				Features []struct {
					Type       string `json:"type"`
					MaxResults int    `json:"maxResults"`
				} `json:"features"`
				ImageContext struct {
					WebDetectionParams struct {
						IncludeGeoResults *bool `json:"includeGeoResults"`
					} `json:"webDetectionParams"`
				} `json:"imageContext"`
			} `json:"requests"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		require.Len(t, sent.Requests, 1)
		require.Equal(t, "AQID", sent.Requests[0].Image.Content)
		require.Equal(t, "WEB_DETECTION", sent.Requests[0].Features[0].Type)
		require.Equal(t, vision.DefaultMaxResults, sent.Requests[0].Features[0].MaxResults)
		require.NotNil(t, sent.Requests[0].ImageContext.WebDetectionParams.IncludeGeoResults)
		require.False(t, *sent.Requests[0].ImageContext.WebDetectionParams.IncludeGeoResults)

		return jsonResponse(http.StatusOK, `{"responses":[{"webDetection":{
			"fullMatchingImages":[{"url":"https://www.shueisha.co.jp/a.jpg"}],
			"partialMatchingImages":[{"url":"https://x.com/u/status/1"},{"url":"https://WWW.shueisha.co.jp:443/a.jpg#top"}],
			"pagesWithMatchingImages":[{"url":"https://blog.example.org/p"},{"url":"https://www.google.com/search?q=manga"}]
		}}]}`), nil
	}, classifier.New(classifier.DefaultLists()))

	got, err := c.Search(context.Background(), []byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, []domain.Candidate{
		{URL: "https://www.shueisha.co.jp/a.jpg", Domain: "shueisha.co.jp", MatchType: domain.MatchTypeExact},
		{URL: "https://x.com/u/status/1", Domain: "x.com", MatchType: domain.MatchTypePartial},
		{URL: "https://blog.example.org/p", Domain: "blog.example.org", MatchType: domain.MatchTypeRelated},
	}, got)
}

func TestClient_Search_noWebDetection(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"responses":[{}]}`), nil
	}, nil)

	got, err := c.Search(context.Background(), []byte{1})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestClient_Search_unreadableImage(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`), nil
	}, nil)

	_, err := c.Search(context.Background(), []byte{1})
	require.ErrorIs(t, err, serrors.ErrUnreadableInput)
	require.NotErrorIs(t, err, serrors.ErrUpstream)
}

func TestClient_Search_perImageError(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"responses":[{"error":{"code":13,"message":"internal"}}]}`), nil
	}, nil)

	_, err := c.Search(context.Background(), []byte{1})
	require.ErrorIs(t, err, serrors.ErrUpstream)
	require.Contains(t, err.Error(), "internal")
}

func TestClient_Search_non2xx(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid."}}`), nil
	}, nil)

	_, err := c.Search(context.Background(), []byte{1})
	require.ErrorIs(t, err, serrors.ErrUpstream)
	require.Contains(t, err.Error(), "API key not valid.")
}

func TestClient_Search_transportError(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: timeout")
	}, nil)

	_, err := c.Search(context.Background(), []byte{1})
	require.ErrorIs(t, err, serrors.ErrUpstream)
}

func TestClient_Search_missingKey(t *testing.T) {
	c := vision.New(&http.Client{Transport: rtFunc(func(r *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")

		return nil, nil
	})}, vision.Options{})

	_, err := c.Search(context.Background(), []byte{1})
	require.ErrorIs(t, err, serrors.ErrConfiguration)
}

func TestNormalize_relatedOnlyBelowThreshold(t *testing.T) {
	var wd vision.WebDetection
	require.NoError(t, json.Unmarshal([]byte(`{
		"fullMatchingImages":[{"url":"https://a.example/1"},{"url":"https://a.example/2"},{"url":"https://a.example/3"}],
		"partialMatchingImages":[{"url":"https://a.example/4"},{"url":"https://a.example/5"},{"url":""}],
		"pagesWithMatchingImages":[{"url":"https://b.example/page"}]
	}`), &wd))

	got := vision.Normalize(&wd, nil)
	require.Len(t, got, 5)
	for _, c := range got {
		require.NotEqual(t, domain.MatchTypeRelated, c.MatchType)
	}
}

func TestNormalize_relatedWithoutFilter(t *testing.T) {
	var wd vision.WebDetection
	require.NoError(t, json.Unmarshal([]byte(`{
		"pagesWithMatchingImages":[{"url":"https://b.example/search?q=x"},{"url":"https://b.example/search?q=x"}]
	}`), &wd))

	got := vision.Normalize(&wd, nil)
	require.Equal(t, []domain.Candidate{
		{URL: "https://b.example/search?q=x", Domain: "b.example", MatchType: domain.MatchTypeRelated},
	}, got)
}

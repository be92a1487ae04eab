// Package pagetext fetches candidate pages and extracts the readable text that
// is handed to the judgment service.
package pagetext

import (
	"bytes"
	"context"
	"detector/pkg/serrors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	readability "github.com/go-shiori/go-readability"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (compatible; repost-detector/1.0)"
	DefaultMaxBytes  = 4 << 20
	DefaultMaxChars  = 6000
)

// nonContentSelectors are stripped before falling back to body text.
const nonContentSelectors = "script, style, noscript, nav, header, footer"

// Page is what was extracted from a candidate page.
type Page struct {
	Title       string
	Description string
	Text        string
	// PreviewImageURL is the absolute og:image URL, if the page declares one.
	PreviewImageURL string
}

// Fetcher is implemented by page loaders.
type Fetcher interface {
	FetchPage(ctx context.Context, pageURL string) (Page, error)
	FetchImage(ctx context.Context, imageURL string) ([]byte, string, error)
}

type Options struct {
	UserAgent string
	// MaxBytes caps how much of a response body is read.
	MaxBytes int64
	// MaxChars caps the extracted text, in runes.
	MaxChars int
}

// HTTPFetcher loads pages over HTTP.
type HTTPFetcher struct {
	httpClient *http.Client
	opts       Options
}

var _ Fetcher = (*HTTPFetcher)(nil)

func New(httpClient *http.Client, opts Options) *HTTPFetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}

	return &HTTPFetcher{httpClient: httpClient, opts: opts}
}

// FetchPage downloads pageURL and extracts its title, description, preview
// image and main text.
func (f *HTTPFetcher) FetchPage(ctx context.Context, pageURL string) (Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return Page{}, serrors.With(serrors.ErrBadRequest, "invalid page url: %s", pageURL)
	}

	body, err := f.get(ctx, pageURL, "text/html,application/xhtml+xml")
	if err != nil {
		return Page{}, err
	}

	return Extract(body, u, f.opts.MaxChars)
}

// FetchImage downloads imageURL and returns its content and sniffed media type.
func (f *HTTPFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	body, err := f.get(ctx, imageURL, "image/*")
	if err != nil {
		return nil, "", err
	}

	mt := mimetype.Detect(body)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, "", serrors.With(serrors.ErrUnsupportedMedia, "%s is not an image (%s)", imageURL, mt.String())
	}

	return body, strings.SplitN(mt.String(), ";", 2)[0], nil
}

func (f *HTTPFetcher) get(ctx context.Context, target, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUpstream, err, "could not fetch %s", target)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, serrors.With(serrors.ErrUpstream, "could not fetch %s: status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBytes))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUpstream, err, "could not read %s", target)
	}

	return body, nil
}

// Extract parses an HTML document. The main text comes from readability and
// falls back to the stripped body when readability finds nothing.
func Extract(html []byte, pageURL *url.URL, maxChars int) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return Page{}, fmt.Errorf("could not parse html: %w", err)
	}

	page := Page{
		Title:       title(doc),
		Description: metaContent(doc, "meta[name='description']", "meta[property='og:description']"),
	}

	if img := metaContent(doc, "meta[property='og:image']", "meta[name='twitter:image']"); img != "" {
		if ref, err := url.Parse(img); err == nil && pageURL != nil {
			page.PreviewImageURL = pageURL.ResolveReference(ref).String()
		}
	}

	if article, err := readability.FromReader(bytes.NewReader(html), pageURL); err == nil {
		page.Text = collapse(article.TextContent)
		if page.Title == "" {
			page.Title = strings.TrimSpace(article.Title)
		}
	}

	if page.Text == "" {
		body := doc.Find("body").First()
		body.Find(nonContentSelectors).Remove()
		page.Text = collapse(body.Text())
	}

	page.Text = truncate(page.Text, maxChars)

	return page, nil
}

func title(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}

	return metaContent(doc, "meta[property='og:title']")
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}

	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}

	return string([]rune(s)[:maxChars])
}

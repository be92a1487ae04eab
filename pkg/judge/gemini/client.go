// Package gemini provides a judge.Client backed by the Gemini generateContent
// REST API.
package gemini

import (
	"bytes"
	"context"
	"detector/pkg/judge"
	"detector/pkg/judge/reply"
	"detector/pkg/logger"
	"detector/pkg/metrics"
	"detector/pkg/serrors"
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
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the public Generative Language API base URL.
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is used when Options.Model is empty.
	DefaultModel = "gemini-2.0-flash"

	tracerName = "detector/pkg/judge/gemini"
)

// Options configure the client.
type Options struct {
	// APIKey is required at call time; a missing key is a configuration error.
	APIKey   string
	Endpoint string
	Model    string
	// Temperature is forwarded as generationConfig.temperature.
	Temperature float64
	// RequestsPerSecond paces outgoing calls. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int
	// IllegalKeywords are listed in content prompts.
	IllegalKeywords []string
}

// Client calls Gemini and parses its labeled-line replies. It is safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *rate.Limiter
	recorder   *metrics.GatewayRecorder
}

var _ judge.Client = (*Client)(nil)

// New creates a client. The API key is not checked here so that a service
// can start without credentials and report the problem per call.
func New(httpClient *http.Client, opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		httpClient: httpClient,
		opts:       opts,
		limiter:    limiter,
		recorder:   metrics.NewGatewayRecorder("gemini"),
	}
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// JudgeContent asks the model for a verdict on a candidate page.
func (c *Client) JudgeContent(ctx context.Context, req judge.ContentRequest) (judge.ContentJudgment, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "gemini.JudgeContent",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("candidate.url", req.URL)))
	defer span.End()

	text, err := c.generate(ctx, "judge_content", []part{{Text: contentPrompt(req, c.opts.IllegalKeywords)}})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return judge.ContentJudgment{}, err
	}

	v := reply.ParseVerdict(text)
	if !v.Parsed {
		logger.Debug(ctx, "gemini reply has no readable verdict", zap.String("reply", text))
	}
	span.SetAttributes(attribute.String("judgment", string(v.Judgment)))

	return judge.ContentJudgment{Judgment: v.Judgment, Reason: v.Reason, Note: v.Note}, nil
}

// CompareImages asks the model whether the candidate shows the original image.
func (c *Client) CompareImages(ctx context.Context, req judge.ImageComparisonRequest) (judge.Comparison, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "gemini.CompareImages",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("candidate.url", req.CandidateURL)))
	defer span.End()

	parts := []part{
		{Text: comparisonPrompt(req)},
		{InlineData: &inlineData{MimeType: req.OriginalMediaType, Data: base64.StdEncoding.EncodeToString(req.Original)}},
	}
	if len(req.Reference) > 0 {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: req.ReferenceMediaType,
			Data:     base64.StdEncoding.EncodeToString(req.Reference),
		}})
	}

	text, err := c.generate(ctx, "compare_images", parts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return judge.Comparison{}, err
	}

	cmp := reply.ParseComparison(text)
	span.SetAttributes(attribute.String("similarity", string(cmp.Similarity)))

	return judge.Comparison{Similarity: cmp.Similarity, Reason: cmp.Reason}, nil
}

// generate sends one generateContent request and returns the reply text. An
// empty or blocked reply yields "" without error so the parser falls back.
func (c *Client) generate(ctx context.Context, operation string, parts []part) (text string, err error) {
	if c.opts.APIKey == "" {
		return "", serrors.With(serrors.ErrConfiguration, "gemini api key is not configured")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("could not wait for gemini rate limit: %w", err)
		}
	}

	start := time.Now()
	defer func() { c.recorder.Record(ctx, operation, start, err) }()

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{Temperature: c.opts.Temperature},
	})
	if err != nil {
		return "", fmt.Errorf("could not marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.opts.Endpoint, "/"), c.opts.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.opts.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrUpstream, err, "could not send gemini request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrUpstream, err, "could not read gemini response")
	}

	var gr generateResponse
	decodeErr := json.Unmarshal(b, &gr)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(b))
		if decodeErr == nil && gr.Error != nil && gr.Error.Message != "" {
			msg = gr.Error.Message
		}

		return "", serrors.With(serrors.ErrUpstream, "gemini request failed (status %d): %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		logger.Warn(ctx, "could not decode gemini response", zap.Error(decodeErr))

		return "", nil
	}
	if gr.Error != nil {
		return "", serrors.With(serrors.ErrUpstream, "gemini returned an error: %s", gr.Error.Message)
	}
	if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
		logger.Warn(ctx, "gemini blocked the prompt", zap.String("reason", gr.PromptFeedback.BlockReason))

		return "", nil
	}
	if len(gr.Candidates) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	return sb.String(), nil
}

package analyzer

import (
	"context"
	"detector/pkg/classifier"
	"detector/pkg/domain"
	"detector/pkg/judge"
	"detector/pkg/logger"
	"detector/pkg/media"
	"detector/pkg/pagetext"
	"detector/pkg/serrors"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// task resolves a single candidate URL.
type task struct {
	analyzer *analyzer
	// sem bounds outbound calls across all tasks of an item; nil when unbounded.
	sem      *semaphore.Weighted
	original media.Image
}

// run resolves c into a record. It only returns an error when the judgment
// service is unusable for every candidate, which fails the whole item.
func (t task) run(ctx context.Context, c domain.Candidate) (domain.AnalysisRecord, error) {
	cls := t.analyzer.deps.Classifier
	d := c.Domain
	if d == "" {
		d = classifier.ExtractDomain(c.URL)
	}
	class := cls.ClassifyDomain(d)

	rec := domain.AnalysisRecord{
		URL:             c.URL,
		Domain:          d,
		DomainType:      cls.DomainType(d),
		Classification:  class,
		InitialJudgment: cls.InitialJudgmentForURL(c.URL),
		MatchType:       c.MatchType,
	}

	ctx = logger.WithFields(ctx, zap.String("candidate", c.URL))

	switch {
	case class == domain.ClassificationPremiumOfficial:
		rec.Judgment = domain.JudgmentClear
		rec.Reason = fmt.Sprintf("premium official domain (%s)", d)

		return rec, nil
	case class == domain.ClassificationOfficial:
		rec.Judgment = domain.JudgmentClear
		rec.Reason = fmt.Sprintf("official domain (%s) confirmed", d)

		return rec, nil
	case classifier.IsImageFile(c.URL):
		rec.Judgment = domain.JudgmentUnknown
		rec.Reason = "the link points directly to an image file and needs manual review"

		return rec, nil
	}

	page := t.fetchPage(ctx, c.URL)

	if t.analyzer.options.CompareImages {
		cmp, ok, err := t.compare(ctx, c.URL, page)
		if err != nil {
			return rec, err
		}
		if ok && !cmp.ShouldAnalyzeFurther() {
			rec.Judgment = domain.JudgmentClear
			rec.Reason = fmt.Sprintf("the image differs from the upload: %s", cmp.Reason)

			return rec, nil
		}
	}

	req := judge.ContentRequest{
		URL:        c.URL,
		Domain:     d,
		DomainType: rec.DomainType,
		Social:     class == domain.ClassificationSNS,
	}
	if info, ok := classifier.ExtractSocialInfo(c.URL); ok {
		req.Social = true
		req.SocialInfo = &info
	}
	if page != nil && t.analyzer.options.FetchPageText {
		req.PageTitle = page.Title
		req.PageText = page.Text
	}

	var verdict judge.ContentJudgment
	err := t.call(ctx, func() error {
		var err error
		verdict, err = t.analyzer.deps.Judge.JudgeContent(ctx, req)

		return err
	})
	if errors.Is(err, serrors.ErrConfiguration) {
		return rec, err
	}
	if err != nil {
		logger.Warn(ctx, "content judgment failed", zap.Error(err))
		rec.Judgment = domain.JudgmentUnknown
		rec.Reason = fmt.Sprintf("content analysis failed: %s", serrors.MessageOf(err))

		return rec, nil
	}

	rec.Judgment = verdict.Judgment
	rec.Reason = verdict.Reason
	rec.Note = verdict.Note

	return rec, nil
}

// fetchPage loads the candidate page when any later step needs it. Failures
// only mean less context for the judgment service.
func (t task) fetchPage(ctx context.Context, pageURL string) *pagetext.Page {
	opts := t.analyzer.options
	if t.analyzer.deps.Pages == nil || (!opts.FetchPageText && !opts.CompareImages) {
		return nil
	}

	var page pagetext.Page
	err := t.call(ctx, func() error {
		var err error
		page, err = t.analyzer.deps.Pages.FetchPage(ctx, pageURL)

		return err
	})
	if err != nil {
		logger.Debug(ctx, "could not fetch candidate page", zap.Error(err))

		return nil
	}

	return &page
}

// compare reports ok=false when the comparison could not be made, in which
// case the candidate goes on to content judgment. Configuration errors are
// returned as is.
func (t task) compare(ctx context.Context,
	candidateURL string,
	page *pagetext.Page) (judge.Comparison, bool, error) {
	req := judge.ImageComparisonRequest{
		Original:          t.original.Data,
		OriginalMediaType: t.original.MediaType,
		CandidateURL:      candidateURL,
	}

	if page != nil && page.PreviewImageURL != "" {
		var (
			ref       []byte
			mediaType string
		)
		err := t.call(ctx, func() error {
			var err error
			ref, mediaType, err = t.analyzer.deps.Pages.FetchImage(ctx, page.PreviewImageURL)

			return err
		})
		if err != nil {
			logger.Debug(ctx, "could not fetch preview image", zap.Error(err))
		} else {
			req.Reference, req.ReferenceMediaType = ref, mediaType
		}
	}

	var cmp judge.Comparison
	err := t.call(ctx, func() error {
		var err error
		cmp, err = t.analyzer.deps.Judge.CompareImages(ctx, req)

		return err
	})
	if errors.Is(err, serrors.ErrConfiguration) {
		return judge.Comparison{}, false, err
	}
	if err != nil {
		logger.Warn(ctx, "image comparison failed", zap.Error(err))

		return judge.Comparison{}, false, nil
	}

	return cmp, true, nil
}

func (t task) call(ctx context.Context, fn func() error) error {
	if t.sem != nil {
		if err := t.sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("could not acquire call slot: %w", err)
		}
		defer t.sem.Release(1)
	}

	return fn()
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/bukti-setor/constants"
	"github.com/joseph-ayodele/bukti-setor/internal/common"
	"github.com/joseph-ayodele/bukti-setor/internal/condition"
	"github.com/joseph-ayodele/bukti-setor/internal/extract"
	"github.com/joseph-ayodele/bukti-setor/internal/ocr"
)

type Conditioner interface {
	Condition(img image.Image) (condition.Result, error)
}

type TextNormalizer interface {
	Normalize(fragments []string) []string
}

type PageConfig struct {
	RecognizeTimeout time.Duration // 0 = no timeout beyond the caller's context
}

// PageProcessor runs Pending -> Conditioning -> Recognizing -> Extracting -> Completed|Failed
// for one page. It keeps no per-page state and may serve several pages at once when
// its recognizer allows it.
type PageProcessor struct {
	conditioner Conditioner
	recognizer  ocr.Recognizer
	normalizer  TextNormalizer
	extractor   *extract.Extractor
	cfg         PageConfig
	logger      *slog.Logger
}

func NewPageProcessor(
	cond Conditioner,
	rec ocr.Recognizer,
	norm TextNormalizer,
	ext *extract.Extractor,
	cfg PageConfig,
	logger *slog.Logger,
) *PageProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if ext == nil {
		ext = extract.New(extract.Config{})
	}
	return &PageProcessor{
		conditioner: cond,
		recognizer:  rec,
		normalizer:  norm,
		extractor:   ext,
		cfg:         cfg,
		logger:      logger,
	}
}

// Process runs every stage for one page. Failures are reported in the result, never panicked.
func (p *PageProcessor) Process(ctx context.Context, page Page) PageResult {
	return p.finish(ctx, p.condition(page))
}

// conditioned is a page that went through conditioning, ready for recognition.
type conditioned struct {
	page   Page
	img    *image.Gray
	result PageResult
	start  time.Time
}

func (p *PageProcessor) condition(page Page) (c conditioned) {
	c = conditioned{
		page:   page,
		start:  time.Now(),
		result: PageResult{Page: page.Index, Status: constants.PageStatusPending, Preview: page.Preview},
	}
	defer func() {
		if r := recover(); r != nil {
			c.result = p.fail(c.result, fmt.Errorf("panic during conditioning: %v", r))
		}
	}()

	p.transition(&c.result, constants.PageStatusConditioning)
	res, err := p.conditioner.Condition(page.Image)
	if err != nil {
		c.result = p.fail(c.result, err)
		return c
	}
	c.img = res.Image
	c.result.Fallback = res.Fallback
	c.result.Warnings = res.Warnings
	return c
}

func (p *PageProcessor) finish(ctx context.Context, c conditioned) (res PageResult) {
	res = c.result
	defer func() {
		if r := recover(); r != nil {
			res = p.fail(res, fmt.Errorf("panic: %v", r))
		}
		res.Duration = time.Since(c.start)
	}()
	if res.Failed() {
		return res
	}

	ctx = common.WithPage(ctx, c.page.Index)
	p.transition(&res, constants.PageStatusRecognizing)
	frags, err := p.recognize(ctx, c.img)
	if err != nil {
		return p.fail(res, err)
	}

	p.transition(&res, constants.PageStatusExtracting)
	text := extract.NewText(p.normalizer.Normalize(ocr.Texts(frags)))
	res.Text = text.Body()
	res.Fields = p.extractFields(ctx, text)
	res.Missing = res.Fields.Missing()
	res.Warning = WarningMessage(res.Missing)
	res.Confidence = ocr.PageConfidence(frags, text.Body())
	res.NeedsReview = res.Confidence < constants.ImageConfidenceThreshold || len(res.Missing) > 0
	p.transition(&res, constants.PageStatusCompleted)
	return res
}

// recognize bounds the recognizer call by the page timeout. A recognizer that
// ignores its context is abandoned, and its late result discarded.
func (p *PageProcessor) recognize(ctx context.Context, img *image.Gray) ([]ocr.Fragment, error) {
	if p.cfg.RecognizeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RecognizeTimeout)
		defer cancel()
	}

	type result struct {
		frags []ocr.Fragment
		err   error
	}
	resultCh := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- result{err: fmt.Errorf("recognizer panic: %v", r)}
			}
		}()
		frags, err := p.recognizer.Recognize(ctx, img)
		resultCh <- result{frags, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("recognize: %w", ctx.Err())
	case r := <-resultCh:
		if r.err != nil {
			return nil, fmt.Errorf("recognize: %w", r.err)
		}
		return r.frags, nil
	}
}

func (p *PageProcessor) extractFields(ctx context.Context, t extract.Text) Fields {
	return Fields{
		Code:   extractField(ctx, p, constants.FieldCode, t, p.extractor.Code),
		Date:   extractField(ctx, p, constants.FieldDate, t, p.extractor.Date),
		Amount: extractField(ctx, p, constants.FieldAmount, t, p.extractor.Amount),
		NTPN:   extractField(ctx, p, constants.FieldNTPN, t, p.extractor.NTPN),
	}
}

// extractField isolates one field: a panicking cascade yields NotFound for that field only.
func extractField[T any](ctx context.Context, p *PageProcessor, field constants.Field, t extract.Text, fn func(extract.Text) extract.Result[T]) (res extract.Result[T]) {
	page := common.PageFromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("field extractor panicked", "page", page, "field", field, "panic", r)
			res = extract.NotFound[T]()
		}
	}()
	res = fn(t)
	if res.Found {
		p.logger.Debug("field extracted", "page", page, "field", field, "strategy", res.Strategy, "kind", res.Kind.String())
	} else {
		p.logger.Debug("field not found", "page", page, "field", field)
	}
	return res
}

func (p *PageProcessor) transition(res *PageResult, next constants.PageStatus) {
	p.logger.Debug("page state", "page", res.Page, "from", res.Status, "to", next)
	res.Status = next
}

func (p *PageProcessor) fail(res PageResult, err error) PageResult {
	if !errors.Is(err, common.ErrPageProcessing) {
		err = fmt.Errorf("%w: %w", common.ErrPageProcessing, err)
	}
	p.logger.Error("page failed", "page", res.Page, "stage", res.Status, "error", err)
	res.Status = constants.PageStatusFailed
	res.Err = err
	res.NeedsReview = true
	return res
}

// failedPage marks a page that was never attempted.
func failedPage(page Page, err error) PageResult {
	if !errors.Is(err, common.ErrPageProcessing) {
		err = fmt.Errorf("%w: %w", common.ErrPageProcessing, err)
	}
	return PageResult{
		Page:        page.Index,
		Status:      constants.PageStatusFailed,
		Err:         err,
		NeedsReview: true,
		Preview:     page.Preview,
	}
}

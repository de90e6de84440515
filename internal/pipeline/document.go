package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

// Resetter discards a recognizer so the next call builds a fresh one.
type Resetter interface {
	Reset()
}

type Option func(*DocumentProcessor)

// WithPageWorkers sets how many pages are processed at once. 1 keeps pages sequential.
func WithPageWorkers(n int) Option {
	return func(d *DocumentProcessor) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithPipelining overlaps conditioning of page i+1 with recognition of page i in sequential mode.
func WithPipelining(on bool) Option {
	return func(d *DocumentProcessor) { d.pipelined = on }
}

// WithResetter overrides the recognizer reset used after an unavailability failure.
func WithResetter(r Resetter) Option {
	return func(d *DocumentProcessor) { d.resetter = r }
}

// DocumentProcessor runs every page of a document through a PageProcessor and
// aggregates the results. A failing page never stops the others.
type DocumentProcessor struct {
	pages     *PageProcessor
	resetter  Resetter
	workers   int
	pipelined bool
	pool      *ants.PoolWithFunc
	logger    *slog.Logger
}

func NewDocumentProcessor(pages *PageProcessor, logger *slog.Logger, opts ...Option) (*DocumentProcessor, error) {
	if pages == nil {
		return nil, common.NewAppError("CONFIG_ERROR", "page processor is required", common.ErrInvalidInput)
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &DocumentProcessor{
		pages:   pages,
		workers: 1,
		logger:  logger,
	}
	if r, ok := pages.recognizer.(Resetter); ok {
		d.resetter = r
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers > 1 {
		pool, err := ants.NewPoolWithFunc(d.workers, func(args any) {
			task, ok := args.(*pageTask)
			if !ok {
				panic("page pool args type error")
			}
			defer task.wg.Done()
			task.results[task.idx] = task.run.processPage(task.page)
		})
		if err != nil {
			return nil, fmt.Errorf("create page pool: %w", err)
		}
		d.pool = pool
	}
	return d, nil
}

// Close releases the page worker pool.
func (d *DocumentProcessor) Close() {
	if d.pool != nil {
		d.pool.Release()
	}
}

// Process returns one PageResult per input page in page order. The error is non-nil
// when the recognizer stayed unavailable after a reset, or when ctx was cancelled;
// the result is complete in both cases, with unattempted pages marked failed.
func (d *DocumentProcessor) Process(ctx context.Context, source string, pages []Page) (DocumentResult, error) {
	start := time.Now()
	doc := DocumentResult{
		DocumentID: uuid.New(),
		Source:     source,
		Pages:      make([]PageResult, len(pages)),
	}
	run := &documentRun{
		d:   d,
		ctx: common.WithDocumentID(ctx, doc.DocumentID.String()),
	}
	d.logger.Info("processing document", "document_id", doc.DocumentID, "source", source, "pages", len(pages), "workers", d.workers)

	if d.pool != nil && len(pages) > 1 {
		run.parallel(pages, doc.Pages)
	} else {
		run.sequential(pages, doc.Pages)
	}

	doc.Summary = summarize(doc.Pages, time.Since(start))
	d.logger.Info("document processed",
		"document_id", doc.DocumentID,
		"pages", doc.Summary.PageCount,
		"completed", doc.Summary.Completed,
		"failed", doc.Summary.Failed,
		"needs_review", doc.Summary.NeedsReview,
		"duration_ms", doc.Summary.Elapsed.Milliseconds(),
	)

	if err := run.fatalErr(); err != nil {
		return doc, fmt.Errorf("document %s: %w", source, err)
	}
	if err := ctx.Err(); err != nil {
		return doc, fmt.Errorf("document %s: %w", source, err)
	}
	return doc, nil
}

type pageTask struct {
	idx     int
	page    Page
	run     *documentRun
	results []PageResult
	wg      *sync.WaitGroup
}

// documentRun holds the per-document recovery state.
type documentRun struct {
	d         *DocumentProcessor
	ctx       context.Context
	resetOnce sync.Once
	reset     atomic.Bool // set once the recognizer has been reinitialized
	mu        sync.Mutex
	fatal     error
}

func (r *documentRun) fatalErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fatal
}

func (r *documentRun) setFatal(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fatal == nil {
		r.fatal = err
	}
}

// stopErr reports why a page should not be attempted at all.
func (r *documentRun) stopErr() error {
	if err := r.fatalErr(); err != nil {
		return err
	}
	return r.ctx.Err()
}

func (r *documentRun) sequential(pages []Page, results []PageResult) {
	var pending <-chan conditioned
	if r.d.pipelined && len(pages) > 0 {
		pending = r.conditionAsync(pages[0])
	}
	for i, page := range pages {
		if err := r.stopErr(); err != nil {
			results[i] = failedPage(page, err)
			continue
		}
		var c conditioned
		if pending != nil {
			c = <-pending
			pending = nil
			if i+1 < len(pages) {
				pending = r.conditionAsync(pages[i+1])
			}
		} else {
			c = r.d.pages.condition(page)
		}
		results[i] = r.recognize(c)
	}
}

func (r *documentRun) conditionAsync(page Page) <-chan conditioned {
	ch := make(chan conditioned, 1)
	go func() {
		ch <- r.d.pages.condition(page)
	}()
	return ch
}

func (r *documentRun) parallel(pages []Page, results []PageResult) {
	var wg sync.WaitGroup
	for i, page := range pages {
		wg.Add(1)
		task := &pageTask{idx: i, page: page, run: r, results: results, wg: &wg}
		if err := r.d.pool.Invoke(task); err != nil {
			wg.Done()
			results[i] = failedPage(page, fmt.Errorf("submit page %d: %w", page.Index, err))
		}
	}
	wg.Wait()
}

func (r *documentRun) processPage(page Page) PageResult {
	if err := r.stopErr(); err != nil {
		return failedPage(page, err)
	}
	return r.recognize(r.d.pages.condition(page))
}

// recognize finishes a conditioned page. The first unavailability in a document resets the
// recognizer and retries the pages that started before the reset once; any unavailability
// after the reset makes the document fatal without another attempt.
func (r *documentRun) recognize(c conditioned) PageResult {
	afterReset := r.reset.Load()
	res := r.d.pages.finish(r.ctx, c)
	if !errors.Is(res.Err, common.ErrRecognizerUnavailable) {
		return res
	}
	if afterReset {
		return r.unavailable(c, res)
	}

	r.resetOnce.Do(func() {
		r.d.logger.Warn("recognizer unavailable, reinitializing",
			"document_id", common.DocumentIDFromContext(r.ctx),
			"page", c.page.Index,
			"error", res.Err,
		)
		if r.d.resetter != nil {
			r.d.resetter.Reset()
		}
		r.reset.Store(true)
	})
	if err := r.fatalErr(); err != nil {
		return failedPage(c.page, err)
	}

	res = r.d.pages.finish(r.ctx, c)
	if errors.Is(res.Err, common.ErrRecognizerUnavailable) {
		return r.unavailable(c, res)
	}
	return res
}

func (r *documentRun) unavailable(c conditioned, res PageResult) PageResult {
	r.d.logger.Error("recognizer unavailable after reinitialization",
		"document_id", common.DocumentIDFromContext(r.ctx),
		"page", c.page.Index,
		"error", res.Err,
	)
	r.setFatal(res.Err)
	return res
}

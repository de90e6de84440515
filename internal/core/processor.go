// Package core wires the extraction components together and runs whole files through them.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/bukti-setor/internal/async"
	"github.com/joseph-ayodele/bukti-setor/internal/ingest"
	"github.com/joseph-ayodele/bukti-setor/internal/pipeline"
	"github.com/joseph-ayodele/bukti-setor/internal/repository"
)

type PageLoader interface {
	Load(ctx context.Context, src ingest.Source) ([]pipeline.Page, error)
}

type DocumentRunner interface {
	Process(ctx context.Context, source string, pages []pipeline.Page) (pipeline.DocumentResult, error)
}

// Processor coordinates page loading, the document pipeline and persistence for one file.
type Processor struct {
	logger *slog.Logger
	loader PageLoader
	docs   DocumentRunner
	repo   repository.DocumentRepository // optional
	sink   func(pipeline.DocumentResult)
}

type ProcessorOption func(*Processor)

// WithRepository persists every processed document.
func WithRepository(repo repository.DocumentRepository) ProcessorOption {
	return func(p *Processor) { p.repo = repo }
}

// WithSink receives every processed document, including ones that ended in a fatal error.
// It may be called from several goroutines.
func WithSink(sink func(pipeline.DocumentResult)) ProcessorOption {
	return func(p *Processor) { p.sink = sink }
}

func NewProcessor(logger *slog.Logger, loader PageLoader, docs DocumentRunner, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{logger: logger, loader: loader, docs: docs}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ProcessFile loads path, runs every page and stores the result. When the pipeline
// reports a fatal error the partial document is still stored and returned.
func (p *Processor) ProcessFile(ctx context.Context, path string) (pipeline.DocumentResult, error) {
	start := time.Now()
	src, err := ingest.Stat(path)
	if err != nil {
		p.logger.Error("processor stat failed", "path", path, "error", err)
		return pipeline.DocumentResult{Source: path}, err
	}

	pages, err := p.loader.Load(ctx, src)
	if err != nil {
		p.logger.Error("processor load failed", "path", src.Path, "error", err)
		return pipeline.DocumentResult{Source: src.Path}, fmt.Errorf("load %s: %w", src.Path, err)
	}

	doc, procErr := p.docs.Process(ctx, src.Path, pages)
	if p.repo != nil {
		if err := p.repo.SaveDocument(ctx, doc, src.HashHex); err != nil {
			p.logger.Error("processor save failed", "document_id", doc.DocumentID, "error", err)
			if procErr == nil {
				procErr = err
			}
		}
	}
	if p.sink != nil {
		p.sink(doc)
	}

	p.logger.Debug("processor done",
		"path", src.Path,
		"document_id", doc.DocumentID,
		"pages", doc.Summary.PageCount,
		"needs_review", doc.Summary.NeedsReview,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return doc, procErr
}

// Handle lets the processor serve an async.ProcessorQueue.
func (p *Processor) Handle(ctx context.Context, job async.Job) error {
	_, err := p.ProcessFile(ctx, job.Path)
	return err
}

var _ async.Handler = (*Processor)(nil)

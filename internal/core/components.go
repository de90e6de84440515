package core

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
	"github.com/joseph-ayodele/bukti-setor/internal/condition"
	"github.com/joseph-ayodele/bukti-setor/internal/extract"
	"github.com/joseph-ayodele/bukti-setor/internal/ingest"
	"github.com/joseph-ayodele/bukti-setor/internal/normalize"
	"github.com/joseph-ayodele/bukti-setor/internal/ocr"
	"github.com/joseph-ayodele/bukti-setor/internal/pipeline"
	"github.com/joseph-ayodele/bukti-setor/internal/textnorm"
)

// Components is the assembled extraction stack.
type Components struct {
	Recognizer  *ocr.Handle
	Conditioner *condition.Conditioner
	Normalizer  *textnorm.Normalizer
	Pages       *pipeline.PageProcessor
	Documents   *pipeline.DocumentProcessor
	Loader      *ingest.Loader
}

// BuildComponents assembles the stack from configuration. The recognizer is built
// lazily on first use. runner nil means os/exec.
func BuildComponents(cfg *common.Config, runner ocr.Runner, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ocr.ExecRunner{}
	}

	ocrCfg := ocr.ConfigFromCommon(cfg.OCR)
	factory, err := ocr.NewFactory(ocrCfg, runner, logger)
	if err != nil {
		return nil, err
	}
	handle := ocr.NewHandle(factory, ocr.HandleOptions{
		TTL:       cfg.OCR.TTL,
		Serialize: ocrCfg.Engine == ocr.EngineGosseract,
	}, logger)

	opts := textnorm.Options{MinFragmentLen: cfg.Text.MinFragmentLen}
	if cfg.Text.SpellCheck {
		dict := textnorm.NewDictionary()
		if cfg.Text.SpellDictionary != "" {
			if dict, err = textnorm.LoadDictionary(cfg.Text.SpellDictionary); err != nil {
				return nil, common.NewAppError("CONFIG_ERROR", "spell dictionary", fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
			}
		}
		opts.Corrector = dict
	}
	normalizer := textnorm.NewNormalizer(opts, logger)

	conditioner := condition.NewConditioner(condition.ConfigFromCommon(cfg.Image), logger)
	extractor := extract.New(extract.Config{
		MinPlausibleAmount: normalize.AmountFromUnits(cfg.Extract.MinPlausibleAmount),
	})
	pages := pipeline.NewPageProcessor(conditioner, handle, normalizer, extractor, pipeline.PageConfig{
		RecognizeTimeout: cfg.OCR.Timeout,
	}, logger)

	docs, err := pipeline.NewDocumentProcessor(pages, logger,
		pipeline.WithPageWorkers(cfg.Pipeline.PageWorkers),
		pipeline.WithPipelining(cfg.Pipeline.Pipelined),
	)
	if err != nil {
		_ = handle.Close()
		return nil, err
	}

	return &Components{
		Recognizer:  handle,
		Conditioner: conditioner,
		Normalizer:  normalizer,
		Pages:       pages,
		Documents:   docs,
		Loader:      ingest.NewLoader(ingest.ConfigFromCommon(cfg.Ingest), runner, logger),
	}, nil
}

// Close releases the page pool and the recognizer.
func (c *Components) Close() error {
	c.Documents.Close()
	return c.Recognizer.Close()
}

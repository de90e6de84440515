package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"cloud.google.com/go/civil"

	"github.com/joseph-ayodele/bukti-setor/internal/async"
	"github.com/joseph-ayodele/bukti-setor/internal/common"
	"github.com/joseph-ayodele/bukti-setor/internal/core"
	"github.com/joseph-ayodele/bukti-setor/internal/export"
	"github.com/joseph-ayodele/bukti-setor/internal/ingest"
	"github.com/joseph-ayodele/bukti-setor/internal/pipeline"
	"github.com/joseph-ayodele/bukti-setor/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

// documentReport is one entry of the -json output.
type documentReport struct {
	DocumentID string            `json:"document_id"`
	Source     string            `json:"source"`
	Records    []pipeline.Record `json:"records"`
}

// collector gathers processed documents from queue workers.
type collector struct {
	mu      sync.Mutex
	reports []documentReport
}

func (c *collector) add(doc pipeline.DocumentResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, documentReport{
		DocumentID: doc.DocumentID.String(),
		Source:     doc.Source,
		Records:    pipeline.ToRecords(doc),
	})
}

func (c *collector) sorted() []documentReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]documentReport(nil), c.reports...)
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

func main() {
	var (
		inmem    = flag.Bool("inmem", false, "use an in-memory SQLite database instead of DB_URL")
		dir      = flag.String("dir", "", "directory of deposit slips to process")
		file     = flag.String("file", "", "single PDF or image to process")
		out      = flag.String("out", "", "output XLSX file path (defaults to bukti_setor.xlsx next to the input)")
		jsonOut  = flag.String("json", "", "also write page records as JSON to this path")
		fromStr  = flag.String("from", "", "export records with deposit date from YYYY-MM-DD")
		toStr    = flag.String("to", "", "export records with deposit date up to YYYY-MM-DD")
		watch    = flag.Bool("watch", false, "keep watching -dir and process new files until interrupted")
		workers  = flag.Int("workers", 1, "documents processed concurrently")
		debounce = flag.Duration("debounce", 500*time.Millisecond, "watch mode: delay before a changed file is processed")
		timeout  = flag.Duration("timeout", 10*time.Minute, "per-document processing limit")
		debug    = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	if (*dir == "") == (*file == "") {
		printError("Error: exactly one of --dir or --file is required\n")
		os.Exit(1)
	}
	if *watch && *dir == "" {
		printError("Error: --watch requires --dir\n")
		os.Exit(1)
	}
	input := *dir + *file
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(input)), "bukti_setor.xlsx")
	}

	from, err := parseDateFlag("from", *fromStr)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	to, err := parseDateFlag("to", *toStr)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *inmem {
		cfg.Database.DSN = repository.InMemoryDSN
	}

	store, err := repository.Open(ctx, repository.ConfigFromCommon(cfg.Database), logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to prepare schema", "error", err)
		os.Exit(1)
	}

	comps, err := core.BuildComponents(cfg, nil, logger)
	if err != nil {
		logger.Error("failed to build extraction stack", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := comps.Close(); err != nil {
			logger.Error("closing recognizer", "error", err)
		}
	}()

	reports := &collector{}
	processor := core.NewProcessor(logger, comps.Loader, comps.Documents,
		core.WithRepository(store),
		core.WithSink(reports.add),
	)
	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(*workers),
		async.WithProcessTimeout(*timeout),
	)

	if *watch {
		runWatch(ctx, logger, queue, *dir, *debounce)
	} else if err := enqueueInputs(ctx, logger, queue, *dir, *file); err != nil {
		logger.Error("failed to collect inputs", "error", err, "code", common.StatusCode(err).String())
	}

	// drain whatever was accepted even after an interrupt
	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := queue.Shutdown(drainCtx); err != nil {
		logger.Error("queue shutdown", "error", err)
	}
	stats := queue.Stats()

	exportCtx, cancelExport := context.WithTimeout(context.Background(), time.Minute)
	defer cancelExport()
	xlsx, err := export.NewService(store, logger).ExportXLSX(exportCtx, from, to)
	if err != nil {
		logger.Error("failed to export records", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("failed to write output file", "path", *out, "error", err)
		os.Exit(1)
	}

	docs := reports.sorted()
	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, docs, logger); err != nil {
			logger.Error("failed to write json output", "path", *jsonOut, "error", err)
			os.Exit(1)
		}
	}

	review := 0
	for _, d := range docs {
		for _, r := range d.Records {
			if r.NeedsReview {
				review++
			}
		}
	}
	logger.Info("batch complete",
		"documents_ok", stats.Succeeded,
		"documents_failed", stats.Failed,
		"pages_need_review", review,
		"output_file", *out,
	)

	fmt.Printf("Processing complete!\n")
	fmt.Printf("- Documents processed: %d\n", stats.Succeeded)
	fmt.Printf("- Failures: %d\n", stats.Failed)
	fmt.Printf("- Pages needing review: %d\n", review)
	fmt.Printf("- Output: %s\n", *out)
	if stats.Failed > 0 {
		os.Exit(1)
	}
}

func parseDateFlag(name, v string) (*civil.Date, error) {
	if v == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(v)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s date format, use YYYY-MM-DD: %w", name, err)
	}
	return &d, nil
}

func enqueueInputs(ctx context.Context, logger *slog.Logger, queue async.Queue, dir, file string) error {
	if file != "" {
		return queue.Enqueue(ctx, async.NewJob(file))
	}
	sources, _, err := ingest.Discover(ctx, dir, true, logger)
	for _, src := range sources {
		if qerr := queue.Enqueue(ctx, async.NewJob(src.Path)); qerr != nil {
			return qerr
		}
	}
	return err
}

func runWatch(ctx context.Context, logger *slog.Logger, queue async.Queue, dir string, debounce time.Duration) {
	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    debounce,
		SkipHidden:  true,
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "dir", dir, "error", err)
		return
	}
	logger.Info("watching for deposit slips", "dir", dir)
	for paths != nil || errs != nil {
		select {
		case p, ok := <-paths:
			if !ok {
				paths = nil
				continue
			}
			if err := queue.Enqueue(ctx, async.NewJob(p)); err != nil {
				logger.Warn("dropping file", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

// writeJSON writes every record after checking it against the record schema.
func writeJSON(path string, docs []documentReport, logger *slog.Logger) error {
	for _, d := range docs {
		for _, r := range d.Records {
			if err := pipeline.ValidateRecord(r); err != nil {
				logger.Warn("record failed schema validation", "source", d.Source, "page", r.Page, "error", err)
			}
		}
	}
	b, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

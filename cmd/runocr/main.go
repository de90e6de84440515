package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
	"github.com/joseph-ayodele/bukti-setor/internal/core"
	"github.com/joseph-ayodele/bukti-setor/internal/ingest"
	"github.com/joseph-ayodele/bukti-setor/internal/ocr"
)

// runocr conditions and recognizes every page of one file and prints what the
// recognizer saw, before and after fragment normalization.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	raw := flag.Bool("raw", false, "skip conditioning and recognize the decoded page as is")
	flag.Parse()
	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runocr [-raw] <file>")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	comps, err := core.BuildComponents(cfg, nil, logger)
	if err != nil {
		logger.Error("build components", "error", err)
		os.Exit(1)
	}
	defer func() { _ = comps.Close() }()

	src, err := ingest.Stat(flag.Arg(0))
	if err != nil {
		logger.Error("stat input", "error", err)
		os.Exit(1)
	}
	pages, err := comps.Loader.Load(ctx, src)
	if err != nil {
		logger.Error("load input", "error", err)
		os.Exit(1)
	}

	for _, page := range pages {
		start := time.Now()
		img := page.Image
		if !*raw {
			res, err := comps.Conditioner.Condition(img)
			if err != nil {
				logger.Error("condition page", "page", page.Index, "error", err)
				continue
			}
			img = res.Image
			for _, w := range res.Warnings {
				logger.Warn("conditioning warning", "page", page.Index, "warning", w)
			}
		}

		frags, err := comps.Recognizer.Recognize(common.WithPage(ctx, page.Index), img)
		if err != nil {
			logger.Error("recognize page", "page", page.Index, "error", err, "code", common.StatusCode(err).String())
			os.Exit(1)
		}
		lines := comps.Normalizer.Normalize(ocr.Texts(frags))
		fmt.Printf("=== page %d (%d fragments, confidence %.2f, %d ms)\n",
			page.Index, len(frags), ocr.PageConfidence(frags, strings.Join(lines, "\n")), time.Since(start).Milliseconds())
		for _, f := range frags {
			fmt.Printf("  %5.2f  %s\n", f.Confidence, f.Text)
		}
		fmt.Println("--- normalized")
		for _, ln := range lines {
			fmt.Printf("  %s\n", ln)
		}
	}
}

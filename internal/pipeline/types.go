// Package pipeline sequences conditioning, recognition, normalization and field
// extraction for pages and whole documents.
package pipeline

import (
	"image"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bukti-setor/constants"
	"github.com/joseph-ayodele/bukti-setor/internal/extract"
	"github.com/joseph-ayodele/bukti-setor/internal/normalize"
)

// Page is one decoded input page. Index is 1-based.
type Page struct {
	Index   int
	Image   image.Image
	Preview string // preview file name, when one was saved
}

// Fields holds the four independently extracted results of a page.
type Fields struct {
	Code   extract.Result[string]
	Date   extract.Result[civil.Date]
	Amount extract.Result[normalize.Amount]
	NTPN   extract.Result[string]
}

// Missing lists the fields that were not found, in report order.
func (f Fields) Missing() []constants.Field {
	found := map[constants.Field]bool{
		constants.FieldCode:   f.Code.Found,
		constants.FieldDate:   f.Date.Found,
		constants.FieldAmount: f.Amount.Found,
		constants.FieldNTPN:   f.NTPN.Found,
	}
	var out []constants.Field
	for _, field := range constants.Fields() {
		if !found[field] {
			out = append(out, field)
		}
	}
	return out
}

type PageResult struct {
	Page        int
	Status      constants.PageStatus
	Fields      Fields
	Missing     []constants.Field
	Warning     string // shown to the operator when fields are missing
	Err         error  // set when Status is FAILED
	Confidence  float32
	NeedsReview bool
	Fallback    bool     // conditioning fell back to plain grayscale
	Warnings    []string // conditioning warnings
	Text        string   // normalized text the fields were extracted from
	Preview     string
	Duration    time.Duration
}

func (r PageResult) Failed() bool { return r.Status == constants.PageStatusFailed }

type Summary struct {
	PageCount   int
	Completed   int
	Failed      int
	NeedsReview int
	Elapsed     time.Duration
}

// DocumentResult always holds one PageResult per input page, in page order.
type DocumentResult struct {
	DocumentID uuid.UUID
	Source     string
	Pages      []PageResult
	Summary    Summary
}

// WarningMessage builds the operator notice for missing fields, "" when nothing is missing.
func WarningMessage(missing []constants.Field) string {
	if len(missing) == 0 {
		return ""
	}
	labels := make([]string, len(missing))
	for i, f := range missing {
		labels[i] = f.Label()
	}
	return "Data tidak terdeteksi: " + strings.Join(labels, ", ") + ". Mohon isi manual."
}

func summarize(pages []PageResult, elapsed time.Duration) Summary {
	s := Summary{PageCount: len(pages), Elapsed: elapsed}
	for _, p := range pages {
		if p.Failed() {
			s.Failed++
		} else {
			s.Completed++
		}
		if p.NeedsReview {
			s.NeedsReview++
		}
	}
	return s
}

package pipeline

import (
	"math"

	"github.com/joseph-ayodele/bukti-setor/internal/normalize"
)

// Record is the flat, serializable form of a page result.
type Record struct {
	Page           int               `json:"page"`
	Code           string            `json:"code,omitempty"`
	Date           string            `json:"date,omitempty"`
	Amount         *normalize.Amount `json:"amount,omitempty"`
	NTPN           string            `json:"ntpn,omitempty"`
	MissingFields  []string          `json:"missing_fields,omitempty"`
	WarningMessage string            `json:"warning_message,omitempty"`
	Error          string            `json:"error,omitempty"`
	NeedsReview    bool              `json:"needs_review"`
	Confidence     float64           `json:"confidence"`
	PreviewImage   string            `json:"preview_image,omitempty"`
}

func ToRecord(r PageResult) Record {
	rec := Record{
		Page:           r.Page,
		WarningMessage: r.Warning,
		NeedsReview:    r.NeedsReview,
		Confidence:     math.Round(float64(r.Confidence)*100) / 100,
		PreviewImage:   r.Preview,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	if v, ok := r.Fields.Code.Get(); ok {
		rec.Code = v
	}
	if v, ok := r.Fields.Date.Get(); ok {
		rec.Date = v.String()
	}
	if v, ok := r.Fields.Amount.Get(); ok {
		rec.Amount = &v
	}
	if v, ok := r.Fields.NTPN.Get(); ok {
		rec.NTPN = v
	}
	for _, f := range r.Missing {
		rec.MissingFields = append(rec.MissingFields, string(f))
	}
	return rec
}

// ToRecords flattens a document in page order.
func ToRecords(doc DocumentResult) []Record {
	out := make([]Record, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		out = append(out, ToRecord(p))
	}
	return out
}

// Package export renders page records as spreadsheets.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bukti-setor/internal/pipeline"
	"github.com/joseph-ayodele/bukti-setor/internal/repository"
)

// SheetName is the worksheet holding the records.
const SheetName = "Bukti Setor"

var headers = []string{
	"Halaman",
	"Kode Setor",
	"Tanggal",
	"Jumlah",
	"NTPN",
	"Catatan",
	"Berkas",
}

// Row is one spreadsheet row: a page record and the file it came from.
type Row struct {
	Source string
	pipeline.Record
}

// RowsFromDocument pairs every page record of doc with its source.
func RowsFromDocument(doc pipeline.DocumentResult) []Row {
	recs := pipeline.ToRecords(doc)
	rows := make([]Row, len(recs))
	for i, r := range recs {
		rows[i] = Row{Source: doc.Source, Record: r}
	}
	return rows
}

// ExportRecordsXLSX returns an XLSX workbook (as bytes) with one row per record.
// Rows that need review are highlighted.
func ExportRecordsXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}
	_ = f.SetRowStyle(SheetName, 1, 1, headerStyle)

	amountFmt := "#,##0.00"
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}
	reviewStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}
	reviewAmountStyle, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &amountFmt,
		Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}

		write(1, r.Page)
		write(2, r.Code)
		write(3, r.Date)
		if r.Amount != nil {
			write(4, r.Amount.Float64())
		}
		write(5, r.NTPN)
		write(6, truncate(note(r.Record), 200))
		write(7, filepath.Base(r.Source))

		amountCell := "D" + strconv.Itoa(row)
		if r.NeedsReview {
			_ = f.SetCellStyle(SheetName, "A"+strconv.Itoa(row), "G"+strconv.Itoa(row), reviewStyle)
			_ = f.SetCellStyle(SheetName, amountCell, amountCell, reviewAmountStyle)
		} else {
			_ = f.SetCellStyle(SheetName, amountCell, amountCell, amountStyle)
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(SheetName, "A", "A", 9)  // page
	_ = f.SetColWidth(SheetName, "B", "B", 12) // code
	_ = f.SetColWidth(SheetName, "C", "C", 12) // date
	_ = f.SetColWidth(SheetName, "D", "D", 18) // amount
	_ = f.SetColWidth(SheetName, "E", "E", 20) // ntpn
	_ = f.SetColWidth(SheetName, "F", "F", 60) // notes
	_ = f.SetColWidth(SheetName, "G", "G", 36) // file

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// note is the error for failed pages, otherwise the missing-field warning.
func note(r pipeline.Record) string {
	if r.Error != "" {
		return r.Error
	}
	return r.WarningMessage
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

// Service exports stored records.
type Service struct {
	repo   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(repo repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportXLSX returns a workbook of stored records whose deposit date lies in [from, to].
// If only from is provided -> from..today (inclusive).
// If neither is provided   -> all records.
func (s *Service) ExportXLSX(ctx context.Context, from, to *civil.Date) ([]byte, error) {
	start := time.Now()
	if from != nil && to == nil {
		today := civil.DateOf(time.Now())
		to = &today
	}

	recs, err := s.repo.ListRecords(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	rows := make([]Row, len(recs))
	for i, r := range recs {
		rows[i] = Row{Source: r.Source, Record: r.Record}
	}

	b, err := ExportRecordsXLSX(rows)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export xlsx ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b, nil
}

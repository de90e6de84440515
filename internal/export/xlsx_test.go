package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bukti-setor/internal/normalize"
	"github.com/joseph-ayodele/bukti-setor/internal/pipeline"
	"github.com/joseph-ayodele/bukti-setor/internal/repository"
)

func amount(units int64) *normalize.Amount {
	a := normalize.AmountFromUnits(units)
	return &a
}

func readRows(t *testing.T, b []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return rows
}

func TestExportRecordsXLSX(t *testing.T) {
	rows := []Row{
		{Source: "/in/a.pdf", Record: pipeline.Record{Page: 1, Code: "411211", Date: "2024-01-15", Amount: amount(1500000), NTPN: "1234567890123456", Confidence: 0.9}},
		{Source: "/in/a.pdf", Record: pipeline.Record{Page: 2, Amount: amount(250000), WarningMessage: "Data tidak terdeteksi: Kode Setor, Tanggal, NTPN. Mohon isi manual.", NeedsReview: true}},
		{Source: "/in/a.pdf", Record: pipeline.Record{Page: 3, Error: "page processing failed: corrupt", NeedsReview: true}},
	}

	b, err := ExportRecordsXLSX(rows)
	require.NoError(t, err)

	got := readRows(t, b)
	require.Len(t, got, 4)
	assert.Equal(t, headers, got[0])
	assert.Equal(t, []string{"1", "411211", "2024-01-15", "1500000", "1234567890123456", "", "a.pdf"}, got[1])
	assert.Equal(t, "Data tidak terdeteksi: Kode Setor, Tanggal, NTPN. Mohon isi manual.", got[2][5])
	assert.Equal(t, "page processing failed: corrupt", got[3][5])
}

func TestExportRecordsXLSXEmpty(t *testing.T) {
	b, err := ExportRecordsXLSX(nil)
	require.NoError(t, err)
	got := readRows(t, b)
	require.Len(t, got, 1)
	assert.Equal(t, headers, got[0])
}

func TestRowsFromDocument(t *testing.T) {
	doc := pipeline.DocumentResult{Source: "/in/b.png", Pages: []pipeline.PageResult{{Page: 1}, {Page: 2}}}
	rows := RowsFromDocument(doc)
	require.Len(t, rows, 2)
	assert.Equal(t, "/in/b.png", rows[1].Source)
	assert.Equal(t, 2, rows[1].Page)
}

type fakeRepo struct {
	recs     []repository.StoredRecord
	err      error
	from, to *civil.Date
}

func (f *fakeRepo) SaveDocument(context.Context, pipeline.DocumentResult, string) error { return nil }

func (f *fakeRepo) ListRecords(_ context.Context, from, to *civil.Date) ([]repository.StoredRecord, error) {
	f.from, f.to = from, to
	return f.recs, f.err
}

func TestServiceExportXLSX(t *testing.T) {
	repo := &fakeRepo{recs: []repository.StoredRecord{
		{Source: "/in/a.pdf", Record: pipeline.Record{Page: 1, Code: "411121"}},
	}}
	from := civil.Date{Year: 2024, Month: time.January, Day: 1}

	b, err := NewService(repo, nil).ExportXLSX(context.Background(), &from, nil)

	require.NoError(t, err)
	require.NotNil(t, repo.to)
	assert.Equal(t, civil.DateOf(time.Now()), *repo.to)
	got := readRows(t, b)
	require.Len(t, got, 2)
	assert.Equal(t, "411121", got[1][1])
}

func TestServiceExportXLSXRepoError(t *testing.T) {
	_, err := NewService(&fakeRepo{err: errors.New("db down")}, nil).ExportXLSX(context.Background(), nil, nil)
	assert.ErrorContains(t, err, "db down")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}

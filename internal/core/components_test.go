package core

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bukti-setor/constants"
	"github.com/joseph-ayodele/bukti-setor/internal/common"
	"github.com/joseph-ayodele/bukti-setor/internal/pipeline"
	"github.com/joseph-ayodele/bukti-setor/internal/repository"
)

// tsv renders lines as tesseract word rows, one recognized line per input line.
func tsv(lines ...string) string {
	var b strings.Builder
	b.WriteString("level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n")
	for i, ln := range lines {
		for j, w := range strings.Fields(ln) {
			b.WriteString(strings.Join([]string{
				"5", "1", "1", "1", strconv.Itoa(i + 1), strconv.Itoa(j + 1),
				strconv.Itoa(10 + 40*j), strconv.Itoa(20 * (i + 1)), "35", "12", "92", w,
			}, "\t"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

type tesseractRunner struct {
	stdout string
}

func (r tesseractRunner) Run(_ context.Context, _ string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	if len(args) == 1 && args[0] == "--version" {
		return []byte("tesseract 5.3.0"), nil, nil
	}
	return []byte(r.stdout), nil, nil
}

func testConfig() *common.Config {
	return &common.Config{
		OCR:      common.OCRConfig{Engine: "tesseract", Lang: "ind+eng", PSM: 6, Timeout: time.Minute},
		Image:    common.ImageConfig{MaxWidth: 800, MaxHeight: 1000, FilterStrength: 10, TemplateWindow: 3, SearchWindow: 5, Sharpen: true},
		Text:     common.TextConfig{MinFragmentLen: 3},
		Extract:  common.ExtractConfig{MinPlausibleAmount: 10000},
		Pipeline: common.PipelineConfig{PageWorkers: 1, Pipelined: true},
	}
}

var receiptLines = []string{
	"BUKTI PENERIMAAN NEGARA",
	"Kode Akun Pajak : 411211",
	"Jumlah Setor Rp 2.750.000",
	"Tanggal Bayar 03/02/2024",
	"NTPN 1234567890123456",
}

func whitePage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestBuildComponentsEndToEnd(t *testing.T) {
	c, err := BuildComponents(testConfig(), tesseractRunner{stdout: tsv(receiptLines...)}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	res := c.Pages.Process(context.Background(), pipeline.Page{Index: 1, Image: whitePage(60, 40)})

	require.NoError(t, res.Err)
	assert.Equal(t, constants.PageStatusCompleted, res.Status)
	assert.Equal(t, "411211", res.Fields.Code.Value)
	assert.Equal(t, "2750000", res.Fields.Amount.Value.String())
	assert.Equal(t, "2024-02-03", res.Fields.Date.Value.String())
	assert.Equal(t, "1234567890123456", res.Fields.NTPN.Value)
	assert.Equal(t, 1, c.Recognizer.Builds())
}

func TestProcessFileWithStore(t *testing.T) {
	c, err := BuildComponents(testConfig(), tesseractRunner{stdout: tsv(receiptLines...)}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	store, err := repository.Open(context.Background(), repository.Config{DSN: repository.InMemoryDSN}, nil)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.EnsureSchema(context.Background()))

	path := filepath.Join(t.TempDir(), "bukti.png")
	require.NoError(t, imaging.Save(whitePage(60, 40), path))

	doc, err := NewProcessor(nil, c.Loader, c.Documents, WithRepository(store)).ProcessFile(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	recs, err := store.ListRecords(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "411211", recs[0].Code)
	assert.Equal(t, "2024-02-03", recs[0].Date)
	assert.Equal(t, path, recs[0].Source)
}

func TestBuildComponentsRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.OCR.Engine = "paddle"
	_, err := BuildComponents(cfg, tesseractRunner{}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	cfg = testConfig()
	cfg.Text.SpellCheck = true
	cfg.Text.SpellDictionary = filepath.Join(t.TempDir(), "missing.txt")
	_, err = BuildComponents(cfg, tesseractRunner{}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestUndecodedPageFailsAlone(t *testing.T) {
	c, err := BuildComponents(testConfig(), tesseractRunner{stdout: tsv(receiptLines...)}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	doc, err := c.Documents.Process(context.Background(), "bukti.pdf", []pipeline.Page{
		{Index: 1, Image: whitePage(60, 40)},
		{Index: 2},
		{Index: 3, Image: whitePage(60, 40)},
	})

	require.NoError(t, err)
	require.Len(t, doc.Pages, 3)
	assert.Equal(t, constants.PageStatusCompleted, doc.Pages[0].Status)
	assert.Equal(t, constants.PageStatusFailed, doc.Pages[1].Status)
	assert.ErrorIs(t, doc.Pages[1].Err, common.ErrConditioning)
	assert.Equal(t, constants.PageStatusCompleted, doc.Pages[2].Status)
	assert.Equal(t, 1, doc.Summary.Failed)
}

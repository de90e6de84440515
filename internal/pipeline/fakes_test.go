package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
	"github.com/joseph-ayodele/bukti-setor/internal/condition"
	"github.com/joseph-ayodele/bukti-setor/internal/extract"
	"github.com/joseph-ayodele/bukti-setor/internal/ocr"
	"github.com/joseph-ayodele/bukti-setor/internal/textnorm"
)

var receiptFragments = []ocr.Fragment{
	{Text: "BUKTI PENERIMAAN NEGARA", Confidence: 0.9},
	{Text: "Kode Akun Pajak : 411211", Confidence: 0.9},
	{Text: "Jumlah Setor Rp 1.500.000,00", Confidence: 0.9},
	{Text: "Tanggal Bayar 15/01/2024", Confidence: 0.9},
	{Text: "Nomor Transaksi Penerimaan Negara 1234567890123456", Confidence: 0.9},
}

// testPages encodes the page index as the image width so fakes can tell pages apart.
func testPages(n int) []Page {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{Index: i + 1, Image: image.NewGray(image.Rect(0, 0, i+1, 1))}
	}
	return pages
}

func pageOf(img image.Image) int { return img.Bounds().Dx() }

type fakeConditioner struct {
	fail    map[int]error
	panicOn map[int]bool
}

func (c fakeConditioner) Condition(img image.Image) (condition.Result, error) {
	page := pageOf(img)
	if c.panicOn[page] {
		panic("conditioner exploded")
	}
	if err := c.fail[page]; err != nil {
		return condition.Result{}, err
	}
	return condition.Result{Image: image.NewGray(img.Bounds())}, nil
}

type scriptedRecognizer struct {
	frags       []ocr.Fragment
	pageErr     map[int]error
	panicOn     map[int]bool
	delay       time.Duration
	unavailable int // leading calls that report the recognizer as unavailable

	mu      sync.Mutex
	calls   []int
	resets  int
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (r *scriptedRecognizer) Recognize(ctx context.Context, img image.Image) ([]ocr.Fragment, error) {
	page := pageOf(img)
	r.mu.Lock()
	r.calls = append(r.calls, page)
	unavailable := r.unavailable > 0
	if unavailable {
		r.unavailable--
	}
	r.mu.Unlock()

	n := r.active.Add(1)
	defer r.active.Add(-1)
	for {
		seen := r.maxSeen.Load()
		if n <= seen || r.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.panicOn[page] {
		panic("recognizer exploded")
	}
	if unavailable {
		return nil, fmt.Errorf("%w: tesseract not found", common.ErrRecognizerUnavailable)
	}
	if err := r.pageErr[page]; err != nil {
		return nil, err
	}
	return r.frags, nil
}

func (r *scriptedRecognizer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
}

func (r *scriptedRecognizer) Close() error { return nil }

func (r *scriptedRecognizer) callLog() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.calls...)
}

func (r *scriptedRecognizer) resetCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resets
}

func newTestPageProcessor(cond Conditioner, rec ocr.Recognizer, cfg PageConfig) *PageProcessor {
	return NewPageProcessor(
		cond,
		rec,
		textnorm.NewNormalizer(textnorm.Options{}, slog.Default()),
		extract.New(extract.Config{}),
		cfg,
		slog.Default(),
	)
}

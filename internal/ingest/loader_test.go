package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

func TestLoadImageWithPreview(t *testing.T) {
	dir := t.TempDir()
	src, err := Stat(writeFile(t, dir, "bukti setor.png", 40, 30))
	require.NoError(t, err)
	previews := filepath.Join(dir, "previews")
	l := NewLoader(Config{PreviewDir: previews}, &fakeRunner{}, nil)

	pages, err := l.Load(context.Background(), src)

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Index)
	assert.Equal(t, 40, pages[0].Image.Bounds().Dx())
	want := "bukti setor_hal_1_" + src.HashHex[:8] + ".jpg"
	assert.Equal(t, want, pages[0].Preview)
	assert.FileExists(t, filepath.Join(previews, want))
}

func TestLoadCorruptImage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(p, []byte("not a jpeg"), 0o644))
	src, err := Stat(p)
	require.NoError(t, err)

	_, err = NewLoader(Config{}, &fakeRunner{}, nil).Load(context.Background(), src)

	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func pdfSource(t *testing.T) Source {
	t.Helper()
	p := filepath.Join(t.TempDir(), "bukti.pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4"), 0o644))
	src, err := Stat(p)
	require.NoError(t, err)
	return src
}

// renderPages mimics pdftoppm: the last argument is the output prefix.
func renderPages(t *testing.T, widths ...int) func(string, []string) {
	return func(_ string, args []string) {
		prefix := args[len(args)-1]
		for i, w := range widths {
			writePNG(t, prefix+"-"+pad(i+1, len(widths))+".png", w, 10)
		}
	}
}

// pad zero-pads like pdftoppm: to the width of the page count.
func pad(n, total int) string {
	return fmt.Sprintf("%0*d", len(strconv.Itoa(total)), n)
}

func TestLoadPDF(t *testing.T) {
	src := pdfSource(t)
	widths := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	runner := &fakeRunner{onRun: renderPages(t, widths...)}
	l := NewLoader(Config{DPI: 200}, runner, nil)

	pages, err := l.Load(context.Background(), src)

	require.NoError(t, err)
	require.Len(t, pages, len(widths))
	for i, p := range pages {
		assert.Equal(t, i+1, p.Index)
		assert.Equal(t, widths[i], p.Image.Bounds().Dx())
	}
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "pdftoppm", runner.calls[0].name)
	assert.Equal(t, []string{"-r", "200", "-png", src.Path}, runner.calls[0].args[:4])
}

func TestLoadPDFMaxPages(t *testing.T) {
	src := pdfSource(t)
	runner := &fakeRunner{onRun: renderPages(t, 5, 6, 7)}
	l := NewLoader(Config{MaxPages: 2}, runner, nil)

	pages, err := l.Load(context.Background(), src)

	require.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.Contains(t, runner.calls[0].args, "-l")
}

func TestLoadPDFKeepsUndecodablePage(t *testing.T) {
	src := pdfSource(t)
	runner := &fakeRunner{onRun: func(_ string, args []string) {
		prefix := args[len(args)-1]
		writePNG(t, prefix+"-1.png", 4, 10)
		require.NoError(t, os.WriteFile(prefix+"-2.png", []byte("not a png"), 0o644))
		writePNG(t, prefix+"-3.png", 6, 10)
	}}
	previews := t.TempDir()
	l := NewLoader(Config{PreviewDir: previews}, runner, nil)

	pages, err := l.Load(context.Background(), src)

	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, 4, pages[0].Image.Bounds().Dx())
	assert.Equal(t, 2, pages[1].Index)
	assert.Nil(t, pages[1].Image)
	assert.Empty(t, pages[1].Preview)
	assert.Equal(t, 6, pages[2].Image.Bounds().Dx())
	assert.NotEmpty(t, pages[2].Preview)
}

func TestLoadPDFFailures(t *testing.T) {
	src := pdfSource(t)

	_, err := NewLoader(Config{}, &fakeRunner{err: errors.New("exit status 1")}, nil).Load(context.Background(), src)
	assert.ErrorContains(t, err, "pdftoppm")

	_, err = NewLoader(Config{}, &fakeRunner{}, nil).Load(context.Background(), src)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func heicSource(t *testing.T) Source {
	t.Helper()
	p := filepath.Join(t.TempDir(), "foto.heic")
	require.NoError(t, os.WriteFile(p, []byte("ftypheic"), 0o644))
	src, err := Stat(p)
	require.NoError(t, err)
	return src
}

func TestLoadHEICUsesArtifactCache(t *testing.T) {
	src := heicSource(t)
	cache := t.TempDir()
	runner := &fakeRunner{onRun: func(_ string, args []string) {
		writePNG(t, args[len(args)-1], 12, 8)
	}}
	l := NewLoader(Config{HeicConverter: "magick", ArtifactCacheDir: cache}, runner, nil)

	for i := 0; i < 2; i++ {
		pages, err := l.Load(context.Background(), src)
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, 12, pages[0].Image.Bounds().Dx())
	}
	assert.Equal(t, 1, runner.callCount())
	assert.FileExists(t, filepath.Join(cache, "heic", src.HashHex+".png"))
}

func TestLoadHEICWithoutCache(t *testing.T) {
	src := heicSource(t)
	runner := &fakeRunner{onRun: func(_ string, args []string) {
		writePNG(t, args[len(args)-1], 12, 8)
	}}
	l := NewLoader(Config{HeicConverter: "sips"}, runner, nil)

	pages, err := l.Load(context.Background(), src)

	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.Equal(t, []string{"-s", "format", "png", src.Path, "--out"}, runner.calls[0].args[:5])
}

func TestLoadHEICUnknownConverter(t *testing.T) {
	_, err := NewLoader(Config{HeicConverter: "paint"}, &fakeRunner{}, nil).Load(context.Background(), heicSource(t))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestPreviewName(t *testing.T) {
	assert.Equal(t, "bukti_hal_2_abcdef12.jpg", PreviewName("bukti", 2, "abcdef1234567890"))
	assert.Equal(t, "bukti_hal_1_ab.jpg", PreviewName("bukti", 1, "ab"))
}

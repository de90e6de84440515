package ingest

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

type runCall struct {
	name string
	args []string
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []runCall
	err   error
	onRun func(name string, args []string)
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, runCall{name: name, args: append([]string(nil), args...)})
	f.mu.Unlock()
	if f.err != nil {
		return nil, []byte("converter exploded"), f.err
	}
	if f.onRun != nil {
		f.onRun(name, args)
	}
	return nil, nil, nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

// writePNG saves a white w x h PNG at path.
func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, imaging.Save(testImage(w, h), path))
}

func writeFile(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	p := filepath.Join(dir, name)
	writePNG(t, p, w, h)
	return p
}

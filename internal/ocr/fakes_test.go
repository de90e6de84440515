package ocr

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
)

type runCall struct {
	name string
	args []string
}

type fakeRunner struct {
	mu     sync.Mutex
	calls  []runCall
	stdout []byte
	stderr []byte
	err    error
	onRun  func(name string, args []string)
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, runCall{name: name, args: append([]string(nil), args...)})
	f.mu.Unlock()
	if f.onRun != nil {
		f.onRun(name, args)
	}
	return f.stdout, f.stderr, f.err
}

type fakeRecognizer struct {
	frags   []Fragment
	err     error
	closed  atomic.Bool
	active  atomic.Int32
	maxSeen atomic.Int32
	block   chan struct{}
}

func (f *fakeRecognizer) Recognize(ctx context.Context, _ image.Image) ([]Fragment, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.frags, f.err
}

func (f *fakeRecognizer) Close() error {
	f.closed.Store(true)
	return nil
}

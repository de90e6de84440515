package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

// ErrHandleClosed is returned by a Handle after Close.
var ErrHandleClosed = fmt.Errorf("%w: handle closed", common.ErrRecognizerUnavailable)

type HandleOptions struct {
	// TTL after which the recognizer is torn down and rebuilt on next use; 0 keeps it forever.
	TTL time.Duration
	// Serialize allows one Recognize call at a time, for engines that are not concurrency-safe.
	Serialize bool
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Handle owns one lazily constructed Recognizer. Construction, recycling and teardown
// hold the write lock, so a recycle waits for in-flight calls and concurrent first use
// constructs exactly once. Handle itself satisfies Recognizer.
type Handle struct {
	factory Factory
	opts    HandleOptions
	logger  *slog.Logger

	mu        sync.RWMutex
	rec       Recognizer
	createdAt time.Time
	builds    int
	closed    bool

	callMu sync.Mutex
}

func NewHandle(factory Factory, opts HandleOptions, logger *slog.Logger) *Handle {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handle{factory: factory, opts: opts, logger: logger}
}

// Recognize runs the current recognizer, constructing or recycling it first if needed.
func (h *Handle) Recognize(ctx context.Context, img image.Image) ([]Fragment, error) {
	rec, release, err := h.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if h.opts.Serialize {
		h.callMu.Lock()
		defer h.callMu.Unlock()
	}
	return rec.Recognize(ctx, img)
}

// Warm constructs the recognizer ahead of the first call.
func (h *Handle) Warm(ctx context.Context) error {
	_, release, err := h.acquire(ctx)
	if err != nil {
		return err
	}
	release()
	return nil
}

// Reset discards the current recognizer; the next call builds a fresh one.
func (h *Handle) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.teardownLocked("reset")
}

// Close tears the recognizer down; later calls fail with ErrHandleClosed.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	var err error
	if h.rec != nil {
		err = h.rec.Close()
		h.rec = nil
	}
	return err
}

// Builds reports how many times the factory produced a recognizer.
func (h *Handle) Builds() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.builds
}

// acquire returns the live recognizer with the read lock held; release drops it.
func (h *Handle) acquire(ctx context.Context) (Recognizer, func(), error) {
	fresh := false
	for {
		h.mu.RLock()
		if h.closed {
			h.mu.RUnlock()
			return nil, nil, ErrHandleClosed
		}
		if h.rec != nil && (fresh || !h.expiredLocked()) {
			return h.rec, h.mu.RUnlock, nil
		}
		h.mu.RUnlock()

		if err := h.ensure(ctx); err != nil {
			return nil, nil, err
		}
		fresh = true
	}
}

func (h *Handle) ensure(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHandleClosed
	}
	if h.rec != nil {
		if !h.expiredLocked() {
			return nil
		}
		h.teardownLocked("ttl expired")
	}

	start := h.opts.Now()
	rec, err := h.factory(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !errors.Is(err, common.ErrRecognizerUnavailable) {
			err = fmt.Errorf("%w: %v", common.ErrRecognizerUnavailable, err)
		}
		h.logger.Error("recognizer construction failed", "error", err)
		return err
	}
	h.rec = rec
	h.createdAt = h.opts.Now()
	h.builds++
	h.logger.Info("recognizer ready", "build", h.builds, "duration_ms", h.createdAt.Sub(start).Milliseconds())
	return nil
}

func (h *Handle) expiredLocked() bool {
	return h.opts.TTL > 0 && h.opts.Now().Sub(h.createdAt) >= h.opts.TTL
}

func (h *Handle) teardownLocked(reason string) {
	if h.rec == nil {
		return
	}
	if err := h.rec.Close(); err != nil {
		h.logger.Warn("recognizer close failed", "reason", reason, "error", err)
	}
	h.logger.Info("recognizer recycled", "reason", reason, "age_ms", h.opts.Now().Sub(h.createdAt).Milliseconds())
	h.rec = nil
}

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return ""
	}
}

func TestWatcherInitialScan(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "a.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true}, nil)

	require.NoError(t, err)
	assert.Equal(t, existing, receive(t, events))
}

func TestWatcherEmitsNewFiles(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, Debounce: 20 * time.Millisecond}, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	created := filepath.Join(root, "b.png")
	require.NoError(t, os.WriteFile(created, []byte("x"), 0o644))

	assert.Equal(t, created, receive(t, events))
}

func TestWatcherClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events, errs, err := StartWatcher(ctx, WatchConfig{Roots: []string{t.TempDir()}}, nil)
	require.NoError(t, err)

	cancel()

	for range events {
	}
	for range errs {
	}
}

func TestWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}

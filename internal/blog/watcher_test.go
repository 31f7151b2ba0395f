package blog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatch_InvokesOnChangeAfterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DocumentName)
	require.NoError(t, os.WriteFile(path, []byte("---\n---\nbody\n"), 0o644))

	b, err := Load(path)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	go func() {
		done <- b.Watch(ctx, logger, func() error {
			select {
			case changed <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Give the watcher a moment to register, then touch the document.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("---\n---\nchanged\n"), 0o644))

	select {
	case <-changed:
	case <-ctx.Done():
		t.Fatal("onChange was not invoked")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestWatch_IgnoresTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DocumentName)
	require.NoError(t, os.WriteFile(path, []byte("---\n---\nbody\n"), 0o644))

	b, err := Load(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	go func() {
		_ = b.Watch(ctx, logger, func() error {
			changed <- struct{}{}
			return nil
		})
	}()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".index.md.swp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.md~"), []byte("x"), 0o644))

	select {
	case <-changed:
		t.Fatal("temp files must not trigger onChange")
	case <-time.After(watchDebounce * 2):
	}
}

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "part.stl")
	require.NoError(t, os.WriteFile(file, []byte("solid a\n"), 0o644))

	w, err := New(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(file, file))
	assert.Len(t, w.Files(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(path string) error {
			changed <- path
			return nil
		})
	}()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(file, []byte("solid b\n"), 0o644))
	}

	select {
	case path := <-changed:
		abs, _ := filepath.Abs(file)
		assert.Equal(t, abs, path)
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestAddMissingFile(t *testing.T) {
	w, err := New(time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.Add(filepath.Join(t.TempDir(), "missing.stl")))
}

package out_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	timerout "cadence/internal/modules/timer/adapter/out"
	"cadence/internal/platform/logging"
)

func TestFileStateStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")
	store := timerout.NewFileStateStore(dir)

	_, ok, err := store.Get(ctx, "timer.session")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "timer.session", []byte(`{"review_id":"r1"}`)))
	value, ok, err := store.Get(ctx, "timer.session")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"review_id":"r1"}`, string(value))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "timer.session.json", entries[0].Name())

	require.NoError(t, store.Remove(ctx, "timer.session"))
	require.NoError(t, store.Remove(ctx, "timer.session"))
	_, ok, err = store.Get(ctx, "timer.session")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStateStoreRejectsPathLikeKeys(t *testing.T) {
	t.Parallel()
	store := timerout.NewFileStateStore(t.TempDir())
	require.Error(t, store.Set(context.Background(), "../escape", []byte("{}")))
	_, _, err := store.Get(context.Background(), "a/b")
	require.Error(t, err)
}

func TestKeyOf(t *testing.T) {
	t.Parallel()
	key, ok := timerout.KeyOf("/tmp/state/timer.pending.json")
	assert.True(t, ok)
	assert.Equal(t, "timer.pending", key)

	_, ok = timerout.KeyOf("/tmp/state/.timer.pending-123.tmp")
	assert.False(t, ok)
	_, ok = timerout.KeyOf("/tmp/state/notes.txt")
	assert.False(t, ok)
}

func TestFSWatcherReportsChangedKeysOnce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := timerout.NewFileStateStore(dir)
	watcher := timerout.NewFSWatcher(dir, logging.Nop(), timerout.WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		keys []string
	)
	done := make(chan error, 1)
	go func() {
		done <- watcher.Watch(ctx, func(key string) {
			mu.Lock()
			keys = append(keys, key)
			mu.Unlock()
		})
	}()
	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Set(context.Background(), "timer.session", []byte(`{}`)))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(keys) > 0
	}, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"timer.session"}, keys)
	mu.Unlock()

	cancel()
	require.NoError(t, <-done)
}

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalbridge/src/model"
)

func newTestSignal(id string) model.Signal {
	return model.Signal{
		ID:        id,
		Type:      model.SignalTypeBuy,
		Symbol:    "EURUSD",
		Message:   "BUY EURUSD",
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Source:    model.DefaultSignalSource,
	}
}

func newFileStore(t *testing.T, retention int) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "signals.json"), retention)
}

func TestFileStoreReadAllMissingFile(t *testing.T) {
	s := newFileStore(t, DefaultRetention)

	signals, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, signals)
	assert.NotNil(t, signals)
}

func TestFileStoreReadAllBlankFile(t *testing.T) {
	s := newFileStore(t, DefaultRetention)
	require.NoError(t, os.WriteFile(s.Path(), []byte("  \n\t"), 0o644))

	signals, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestFileStoreReadAllGarbage(t *testing.T) {
	s := newFileStore(t, DefaultRetention)
	require.NoError(t, os.WriteFile(s.Path(), []byte("not json at all"), 0o644))

	_, err := s.ReadAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructure)
}

func TestFileStoreReadAllObjectIsInvalid(t *testing.T) {
	s := newFileStore(t, DefaultRetention)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"Id":"a"}`), 0o644))

	_, err := s.ReadAll(context.Background())
	assert.ErrorIs(t, err, ErrStructure)
}

func TestFileStoreReadAllUnreadablePath(t *testing.T) {
	// A directory at the target path cannot be read as a file.
	dir := t.TempDir()
	s := NewFileStore(dir, DefaultRetention)

	_, err := s.ReadAll(context.Background())
	assert.ErrorIs(t, err, ErrIO)
}

func TestFileStoreAppendAndReadBack(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, DefaultRetention)

	first := newTestSignal("a")
	first.EntryPrice = model.Float64Ptr(1.085)
	second := newTestSignal("b")
	second.Type = model.SignalTypeSell

	require.NoError(t, s.Append(ctx, first))
	require.NoError(t, s.Append(ctx, second))

	signals, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, signals, 2)
	assert.Equal(t, "a", signals[0].ID)
	assert.Equal(t, "b", signals[1].ID)
	assert.Equal(t, model.SignalTypeSell, signals[1].Type)
	require.NotNil(t, signals[0].EntryPrice)
	assert.Equal(t, 1.085, *signals[0].EntryPrice)
	assert.Nil(t, signals[0].StopLoss)
	assert.True(t, first.Timestamp.Equal(signals[0].Timestamp))
}

func TestFileStoreWritesIndentedArray(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, DefaultRetention)

	require.NoError(t, s.Append(ctx, newTestSignal("a")))

	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	content := string(b)
	assert.Contains(t, content, "[\n  {\n")
	assert.Contains(t, content, `"Id": "a"`)
	assert.Contains(t, content, `"Type": "Buy"`)
	assert.Contains(t, content, `"IsProcessed": false`)
	assert.Contains(t, content, `"StopLoss": null`)
}

func TestFileStoreAppendCreatesParentDir(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "signals.json")
	s := NewFileStore(path, DefaultRetention)

	require.NoError(t, s.Append(ctx, newTestSignal("a")))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestFileStoreRetention(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, DefaultRetention)

	for i := 0; i < DefaultRetention+1; i++ {
		require.NoError(t, s.Append(ctx, newTestSignal(fmt.Sprintf("sig-%03d", i))))
	}

	signals, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, signals, DefaultRetention)
	assert.Equal(t, "sig-001", signals[0].ID)
	assert.Equal(t, fmt.Sprintf("sig-%03d", DefaultRetention), signals[len(signals)-1].ID)
}

func TestFileStoreRetentionDisabled(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, 0)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, newTestSignal(fmt.Sprintf("sig-%d", i))))
	}

	signals, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, signals, 5)
}

func TestFileStoreDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, DefaultRetention)

	require.NoError(t, s.Append(ctx, newTestSignal("a")))
	err := s.Append(ctx, newTestSignal("a"))
	assert.ErrorIs(t, err, ErrDuplicate)

	signals, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, signals, 1)
}

func TestFileStoreSharedPath(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "signals.json")
	producer := NewFileStore(path, DefaultRetention)
	consumer := NewFileStore(path, DefaultRetention)

	require.NoError(t, producer.Append(ctx, newTestSignal("a")))
	require.NoError(t, consumer.MarkProcessed(ctx, "a"))
	require.NoError(t, producer.Append(ctx, newTestSignal("b")))

	signals, err := consumer.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, signals, 2)
	assert.True(t, signals[0].IsProcessed)
	assert.False(t, signals[1].IsProcessed)
	assert.ErrorIs(t, consumer.Append(ctx, newTestSignal("b")), ErrDuplicate)
}

func TestFileStoreAppendOntoGarbageLeavesFileUntouched(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, DefaultRetention)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{broken"), 0o644))

	err := s.Append(ctx, newTestSignal("a"))
	assert.ErrorIs(t, err, ErrStructure)

	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(b))
}

func TestFileStoreMarkProcessed(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, DefaultRetention)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Append(ctx, newTestSignal(id)))
	}

	require.NoError(t, s.MarkProcessed(ctx, "a", "c", "missing"))

	signals, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, signals, 3)
	assert.True(t, signals[0].IsProcessed)
	assert.False(t, signals[1].IsProcessed)
	assert.True(t, signals[2].IsProcessed)

	pending := Unprocessed(signals)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].ID)
}

func TestFileStoreMarkProcessedIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, DefaultRetention)
	require.NoError(t, s.Append(ctx, newTestSignal("a")))

	require.NoError(t, s.MarkProcessed(ctx, "a"))
	before, err := os.Stat(s.Path())
	require.NoError(t, err)
	content, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	require.NoError(t, s.MarkProcessed(ctx, "a"))
	require.NoError(t, s.MarkProcessed(ctx, "unknown"))
	require.NoError(t, s.MarkProcessed(ctx))

	after, err := os.Stat(s.Path())
	require.NoError(t, err)
	again, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	assert.Equal(t, before.ModTime(), after.ModTime())
	assert.Equal(t, string(content), string(again))
}

func TestFileStoreMarkProcessedOnMissingFile(t *testing.T) {
	s := newFileStore(t, DefaultRetention)

	require.NoError(t, s.MarkProcessed(context.Background(), "a"))

	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreCancelledContext(t *testing.T) {
	s := newFileStore(t, DefaultRetention)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Append(ctx, newTestSignal("a")), context.Canceled)
	_, err := s.ReadAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.MarkProcessed(ctx, "a"), context.Canceled)
}

func TestFileStoreConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t, DefaultRetention)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Append(ctx, newTestSignal(fmt.Sprintf("sig-%d", i))))
		}(i)
	}
	wg.Wait()

	signals, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, signals, 20)

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTrim(t *testing.T) {
	signals := []model.Signal{newTestSignal("a"), newTestSignal("b"), newTestSignal("c")}

	assert.Len(t, trim(signals, 5), 3)
	assert.Len(t, trim(signals, 0), 3)

	kept := trim(signals, 2)
	require.Len(t, kept, 2)
	assert.Equal(t, "b", kept[0].ID)
	assert.Equal(t, "c", kept[1].ID)
}

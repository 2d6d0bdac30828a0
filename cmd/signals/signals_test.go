package signals

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalbridge/src/model"
	"signalbridge/src/store"
)

func TestSignalsPrintsStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewFileStore(filepath.Join(t.TempDir(), "signals.json"), store.DefaultRetention)
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, st.Append(ctx, model.Signal{ID: "a", Type: model.SignalTypeBuy, Symbol: "EURUSD", Timestamp: ts, Source: "-1"}))
	require.NoError(t, st.Append(ctx, model.Signal{ID: "b", Type: model.SignalTypeSell, Symbol: "GBPUSD", Timestamp: ts, Source: "-1"}))
	require.NoError(t, st.MarkProcessed(ctx, "a"))

	var out bytes.Buffer
	require.NoError(t, (&Signals{Out: &out}).print(ctx, st))
	assert.Contains(t, out.String(), "PROCESSED")
	assert.Contains(t, out.String(), "2024-05-06 07:08:09")
	assert.Contains(t, out.String(), "Buy EURUSD")
	assert.Contains(t, out.String(), "Sell GBPUSD")

	out.Reset()
	require.NoError(t, (&Signals{Unprocessed: true, Out: &out}).print(ctx, st))
	assert.NotContains(t, out.String(), "Buy EURUSD")
	assert.Contains(t, out.String(), "Sell GBPUSD")
}

func TestSignalsStartWithFileBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("SIGNAL_FILE_PATH", filepath.Join(t.TempDir(), "missing.json"))

	var out bytes.Buffer
	require.NoError(t, (&Signals{Out: &out}).Start())
	assert.Contains(t, out.String(), "ID")
}

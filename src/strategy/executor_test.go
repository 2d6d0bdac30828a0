package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalbridge/src/model"
)

func defaultConfig() Config {
	return Config{
		DefaultVolume:         0.01,
		DefaultStopLossPips:   50,
		DefaultTakeProfitPips: 100,
		MaxPositions:          5,
	}
}

func newTestExecutor(t *testing.T, config Config) (*Executor, *logrustest.Hook) {
	t.Helper()
	logger, hook := logrustest.NewNullLogger()
	e := NewExecutor(logrus.NewEntry(logger), config)
	e.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	hook.Reset()
	return e, hook
}

func TestExecutorBuyFillsDefaults(t *testing.T) {
	e, hook := newTestExecutor(t, defaultConfig())

	res, err := e.Execute(context.Background(), model.Signal{
		ID:         "sig-1",
		Type:       model.SignalTypeBuy,
		Symbol:     "EURUSD",
		EntryPrice: model.Float64Ptr(1.085),
	})
	require.NoError(t, err)

	assert.Equal(t, "sig-1", res.SignalID)
	assert.Equal(t, model.SignalTypeBuy, res.Action)
	assert.Equal(t, "EURUSD", res.Symbol)
	assert.Equal(t, 0.01, res.Volume)
	require.NotNil(t, res.StopLoss)
	require.NotNil(t, res.TakeProfit)
	assert.Equal(t, 1.08, *res.StopLoss)
	assert.Equal(t, 1.095, *res.TakeProfit)
	assert.Equal(t, StatusListened, res.Status)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), res.ExecutedAt)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "[LISTEN] Buy signal received", entry.Message)
	assert.Equal(t, "EURUSD", entry.Data["symbol"])
	assert.Equal(t, "1.085", entry.Data["price"])
}

func TestExecutorSellMirrorsLevelsAndUsesJPYPips(t *testing.T) {
	e, _ := newTestExecutor(t, defaultConfig())

	res, err := e.Execute(context.Background(), model.Signal{
		ID:         "sig-2",
		Type:       model.SignalTypeSell,
		Symbol:     "USDJPY",
		EntryPrice: model.Float64Ptr(150.25),
		Volume:     model.Float64Ptr(0.3),
	})
	require.NoError(t, err)

	assert.Equal(t, 0.3, res.Volume)
	assert.Equal(t, 150.75, *res.StopLoss)
	assert.Equal(t, 149.25, *res.TakeProfit)
}

func TestExecutorKeepsExplicitLevels(t *testing.T) {
	e, _ := newTestExecutor(t, defaultConfig())

	res, err := e.Execute(context.Background(), model.Signal{
		Type:       model.SignalTypeBuy,
		Symbol:     "EURUSD",
		EntryPrice: model.Float64Ptr(1.085),
		StopLoss:   model.Float64Ptr(1.08),
		TakeProfit: model.Float64Ptr(1.09),
	})
	require.NoError(t, err)

	assert.Equal(t, 1.08, *res.StopLoss)
	assert.Equal(t, 1.09, *res.TakeProfit)
}

func TestExecutorWithoutEntryLeavesLevelsEmpty(t *testing.T) {
	e, _ := newTestExecutor(t, defaultConfig())

	res, err := e.Execute(context.Background(), model.Signal{Type: model.SignalTypeSell, Symbol: "gbp/usd"})
	require.NoError(t, err)

	assert.Equal(t, "GBPUSD", res.Symbol)
	assert.Nil(t, res.EntryPrice)
	assert.Nil(t, res.StopLoss)
	assert.Nil(t, res.TakeProfit)
}

func TestExecutorClose(t *testing.T) {
	e, hook := newTestExecutor(t, defaultConfig())

	res, err := e.Execute(context.Background(), model.Signal{ID: "c", Type: model.SignalTypeClose, Symbol: "EURUSD"})
	require.NoError(t, err)

	assert.Equal(t, model.SignalTypeClose, res.Action)
	assert.Zero(t, res.Volume)
	assert.Equal(t, "[LISTEN] Close signal received", hook.LastEntry().Message)
}

func TestExecutorRejectsUnknownType(t *testing.T) {
	e, hook := newTestExecutor(t, defaultConfig())

	_, err := e.Execute(context.Background(), model.Signal{ID: "u", Type: model.SignalTypeUnknown, Symbol: "EURUSD"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownType))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestExecutorUnknownSymbol(t *testing.T) {
	config := defaultConfig()
	config.SymbolUniverse = []string{"EURUSD"}
	e, _ := newTestExecutor(t, config)

	_, err := e.Execute(context.Background(), model.Signal{Type: model.SignalTypeBuy, Symbol: "XAUUSD"})
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	_, err = e.Execute(context.Background(), model.Signal{Type: model.SignalTypeBuy})
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestExecutorCanceledContext(t *testing.T) {
	e, _ := newTestExecutor(t, defaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Execute(ctx, model.Signal{Type: model.SignalTypeBuy, Symbol: "EURUSD"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSymbolResolver(t *testing.T) {
	r := NewSymbolResolver([]string{"EURUSD", "BTCUSDT", "GER40INDEX", "US500", " "})

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "eurusd", want: "EURUSD", wantOK: true},
		{in: "BTC/USDT", want: "BTCUSDT", wantOK: true},
		{in: "GER40", want: "GER40INDEX", wantOK: true},
		{in: "US500INDEX", want: "US500", wantOK: true},
		{in: "XAUUSD", wantOK: false},
		{in: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := r.Resolve(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetConfigDefaults(t *testing.T) {
	config := GetConfig()

	assert.Equal(t, 0.01, config.DefaultVolume)
	assert.Equal(t, 50.0, config.DefaultStopLossPips)
	assert.Equal(t, 100.0, config.DefaultTakeProfitPips)
	assert.Equal(t, 5, config.MaxPositions)
}

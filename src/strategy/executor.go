// Package strategy turns stored signals into order intents.
//
// The shipped Executor only listens: it resolves the symbol, fills default size and
// protective levels, logs the intent and reports it. It never places orders.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"signalbridge/src/model"
)

const StatusListened = "listened"

var (
	// ErrUnknownType is returned for signals without an actionable direction.
	ErrUnknownType = errors.New("signal type is not actionable")
	// ErrUnknownSymbol is returned when the symbol is not in the configured universe.
	ErrUnknownSymbol = errors.New("symbol not found")
)

// Result describes the order intent derived from a signal.
type Result struct {
	SignalID   string
	Action     model.SignalType
	Symbol     string
	Volume     float64
	EntryPrice *float64
	StopLoss   *float64
	TakeProfit *float64
	Status     string
	ExecutedAt time.Time
}

type Executor struct {
	logger   *logrus.Entry
	config   Config
	resolver SymbolResolver
	now      func() time.Time
}

func NewExecutor(logger *logrus.Entry, config Config) *Executor {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	e := &Executor{
		logger:   logger,
		config:   config,
		resolver: NewSymbolResolver(config.SymbolUniverse),
		now:      time.Now,
	}

	logger.WithFields(logrus.Fields{
		"default_volume":  config.DefaultVolume,
		"default_sl_pips": config.DefaultStopLossPips,
		"default_tp_pips": config.DefaultTakeProfitPips,
		"max_positions":   config.MaxPositions,
		"symbol_universe": len(e.resolver.universe),
	}).Info("Listening executor started")

	return e
}

func (e *Executor) Execute(ctx context.Context, sig model.Signal) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("execution canceled: %w", err)
	}

	if !sig.Type.Actionable() {
		e.logger.WithFields(logrus.Fields{
			"signal_id": sig.ID,
			"type":      sig.Type,
		}).Warn("Unknown signal type")
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownType, sig.Type)
	}

	symbol, ok := e.resolver.Resolve(sig.Symbol)
	if !ok {
		e.logger.WithFields(logrus.Fields{
			"signal_id": sig.ID,
			"symbol":    sig.Symbol,
		}).Error("Symbol not found")
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownSymbol, sig.Symbol)
	}

	result := Result{
		SignalID:   sig.ID,
		Action:     sig.Type,
		Symbol:     symbol,
		EntryPrice: sig.EntryPrice,
		Status:     StatusListened,
		ExecutedAt: e.now().UTC(),
	}

	switch sig.Type {
	case model.SignalTypeBuy, model.SignalTypeSell:
		result.Volume = e.config.DefaultVolume
		if sig.Volume != nil && *sig.Volume > 0 {
			result.Volume = *sig.Volume
		}
		result.StopLoss, result.TakeProfit = e.protectiveLevels(sig, symbol)

		e.logger.WithFields(logrus.Fields{
			"signal_id": sig.ID,
			"symbol":    symbol,
			"price":     formatPrice(sig.EntryPrice),
			"volume":    result.Volume,
			"sl":        formatPrice(result.StopLoss),
			"tp":        formatPrice(result.TakeProfit),
			"message":   sig.Message,
		}).Infof("[LISTEN] %s signal received", sig.Type)

	case model.SignalTypeClose:
		e.logger.WithFields(logrus.Fields{
			"signal_id": sig.ID,
			"symbol":    symbol,
			"message":   sig.Message,
		}).Info("[LISTEN] Close signal received")
	}

	return result, nil
}

// protectiveLevels keeps explicit levels and derives missing ones from the default pip
// distances when an entry price is known.
func (e *Executor) protectiveLevels(sig model.Signal, symbol string) (sl, tp *float64) {
	sl, tp = sig.StopLoss, sig.TakeProfit
	if sig.EntryPrice == nil {
		return sl, tp
	}

	entry := decimal.NewFromFloat(*sig.EntryPrice)
	pip := decimal.RequireFromString(pipSize(symbol))
	slDist := pip.Mul(decimal.NewFromFloat(e.config.DefaultStopLossPips))
	tpDist := pip.Mul(decimal.NewFromFloat(e.config.DefaultTakeProfitPips))

	if sig.Type == model.SignalTypeSell {
		slDist, tpDist = slDist.Neg(), tpDist.Neg()
	}

	if sl == nil && e.config.DefaultStopLossPips > 0 {
		v, _ := entry.Sub(slDist).Float64()
		sl = &v
	}
	if tp == nil && e.config.DefaultTakeProfitPips > 0 {
		v, _ := entry.Add(tpDist).Float64()
		tp = &v
	}
	return sl, tp
}

func formatPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return decimal.NewFromFloat(*v).String()
}

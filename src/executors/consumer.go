// Package executors runs the consumer side: it polls the signal store and hands every
// unprocessed signal to the execution collaborator.
package executors

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	logger "github.com/sirupsen/logrus"

	"signalbridge/src/metrics"
	"signalbridge/src/model"
	"signalbridge/src/store"
	"signalbridge/src/strategy"
)

// State is the consumer loop state.
type State int32

const (
	StateIdle State = iota
	StateScanning
)

func (s State) String() string {
	if s == StateScanning {
		return "scanning"
	}
	return "idle"
}

// Dispatcher executes a single signal.
type Dispatcher interface {
	Execute(ctx context.Context, sig model.Signal) (strategy.Result, error)
}

// Recorder persists the outcome of a dispatch.
type Recorder interface {
	Record(ctx context.Context, entry *model.DispatchLog) error
}

// ScanReport summarizes one scan cycle.
type ScanReport struct {
	Queued      int // signals drained from the in-process queue
	Read        int // signals read from the store
	Selected    int
	Dispatched  int
	Failed      int
	Skipped     int // unprocessed signals without an actionable type
	StoreErrors int
}

// Consumer owns the poll loop state. Scans are serialized; Enqueue may be called from any goroutine.
type Consumer struct {
	store      store.Store
	dispatcher Dispatcher
	recorder   Recorder
	interval   time.Duration
	log        *logger.Entry

	mu    sync.Mutex
	queue []model.Signal

	scanMu sync.Mutex
	seen   map[string]struct{}
	state  atomic.Int32
}

func NewConsumer(st store.Store, dispatcher Dispatcher, interval time.Duration, log *logger.Entry) *Consumer {
	if log == nil {
		log = logger.NewEntry(logger.StandardLogger())
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Consumer{
		store:      st,
		dispatcher: dispatcher,
		interval:   interval,
		log:        log,
		seen:       make(map[string]struct{}),
	}
}

// WithRecorder enables dispatch logging. It must be called before Run.
func (c *Consumer) WithRecorder(r Recorder) *Consumer {
	c.recorder = r
	return c
}

func (c *Consumer) State() State {
	return State(c.state.Load())
}

func (c *Consumer) Interval() time.Duration {
	return c.interval
}

// Enqueue hands a freshly stored signal to the next scan without waiting for the store read.
func (c *Consumer) Enqueue(sig model.Signal) {
	c.mu.Lock()
	c.queue = append(c.queue, sig)
	c.mu.Unlock()
}

func (c *Consumer) drain() []model.Signal {
	c.mu.Lock()
	defer c.mu.Unlock()
	queued := c.queue
	c.queue = nil
	return queued
}

// Run scans immediately and then once per interval, counted from the end of the previous
// scan, until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.WithField("interval", c.interval.String()).Info("Consumer loop started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("Consumer loop stopped")
			return nil

		case <-timer.C:
			report := c.Scan(ctx)
			if report.Selected > 0 || report.StoreErrors > 0 {
				c.log.WithFields(logger.Fields{
					"queued":       report.Queued,
					"read":         report.Read,
					"selected":     report.Selected,
					"dispatched":   report.Dispatched,
					"failed":       report.Failed,
					"skipped":      report.Skipped,
					"store_errors": report.StoreErrors,
				}).Info("Scan completed")
			}
			timer.Reset(c.interval)
		}
	}
}

// Scan performs one poll cycle. Every selected signal is dispatched at most once per
// consumer lifetime; all dispatched ids are marked processed with a single store call.
func (c *Consumer) Scan(ctx context.Context) ScanReport {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()

	c.state.Store(int32(StateScanning))
	defer c.state.Store(int32(StateIdle))

	start := time.Now()
	defer func() { metrics.ScanDuration.Observe(time.Since(start).Seconds()) }()

	var report ScanReport

	queued := c.drain()
	report.Queued = len(queued)

	stored, err := c.store.ReadAll(ctx)
	if err != nil {
		report.StoreErrors++
		metrics.StoreErrorsTotal.WithLabelValues("read_all").Inc()
		c.log.WithError(err).Error("Error checking for signals")
		stored = nil
	}
	report.Read = len(stored)

	candidates := make([]model.Signal, 0, len(queued)+len(stored))
	candidates = append(candidates, queued...)
	candidates = append(candidates, stored...)

	var (
		batch   []model.Signal
		skipped []string
	)
	for _, sig := range candidates {
		if sig.IsProcessed {
			continue
		}
		if _, ok := c.seen[sig.ID]; ok {
			continue
		}
		c.seen[sig.ID] = struct{}{}

		if !sig.Type.Actionable() {
			c.log.WithFields(logger.Fields{"signal_id": sig.ID, "type": sig.Type}).
				Warn("Skipping signal without actionable type")
			skipped = append(skipped, sig.ID)
			continue
		}
		batch = append(batch, sig)
	}
	report.Selected = len(batch)
	report.Skipped = len(skipped)

	done := make([]string, 0, len(batch)+len(skipped))
	for i, sig := range batch {
		if ctx.Err() != nil {
			// Signals not attempted stay unprocessed for the next consumer.
			for _, rest := range batch[i:] {
				delete(c.seen, rest.ID)
			}
			report.Selected = i
			break
		}

		if c.process(ctx, sig) {
			report.Dispatched++
		} else {
			report.Failed++
		}
		done = append(done, sig.ID)
	}
	done = append(done, skipped...)

	if len(done) > 0 {
		// The rewrite finishes even when shutdown was requested during the batch.
		if err := c.store.MarkProcessed(context.WithoutCancel(ctx), done...); err != nil {
			report.StoreErrors++
			metrics.StoreErrorsTotal.WithLabelValues("mark_processed").Inc()
			c.log.WithError(err).WithField("count", len(done)).Error("Error marking signals as processed")
		}
	}

	return report
}

// process dispatches one signal and reports whether it succeeded.
func (c *Consumer) process(ctx context.Context, sig model.Signal) bool {
	c.log.WithField("signal_id", sig.ID).Infof("Processing signal: %s", sig)

	res, err := c.dispatch(ctx, sig)
	status := model.DispatchStatusListened
	if err != nil {
		status = model.DispatchStatusError
		c.log.WithError(err).WithField("signal_id", sig.ID).Error("Error processing signal")
	}
	metrics.DispatchTotal.WithLabelValues(string(sig.Type), status).Inc()

	if c.recorder != nil {
		c.record(ctx, sig, res, err)
	}
	return err == nil
}

func (c *Consumer) dispatch(ctx context.Context, sig model.Signal) (res strategy.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatch panic: %v", r)
		}
	}()
	return c.dispatcher.Execute(ctx, sig)
}

func (c *Consumer) record(ctx context.Context, sig model.Signal, res strategy.Result, dispatchErr error) {
	entry := &model.DispatchLog{
		SignalID:     sig.ID,
		Action:       string(sig.Type),
		Symbol:       sig.Symbol,
		Status:       model.DispatchStatusListened,
		DispatchedAt: time.Now().UTC(),
	}
	if dispatchErr != nil {
		msg := dispatchErr.Error()
		entry.Status = model.DispatchStatusError
		entry.ErrorMessage = &msg
	} else {
		entry.Symbol = res.Symbol
		entry.Volume = res.Volume
		entry.EntryPrice = res.EntryPrice
		entry.StopLoss = res.StopLoss
		entry.TakeProfit = res.TakeProfit
		entry.DispatchedAt = res.ExecutedAt
	}

	if err := c.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		c.log.WithError(err).WithField("signal_id", sig.ID).Warn("Failed to record dispatch")
	}
}

// Package store persists signals between the producer and consumer processes.
//
// The store is the only integration surface between the two sides. Every mutation
// reads the whole collection, changes it and writes it back, so an implementation can
// be a single JSON file or a database table without callers noticing.
package store

import (
	"context"
	"errors"

	"signalbridge/src/model"
)

// DefaultRetention is the number of signals kept after an append.
const DefaultRetention = 100

var (
	// ErrIO means the backing medium could not be read or written.
	ErrIO = errors.New("signal store io failure")
	// ErrStructure means the backing medium holds content that is not a signal list.
	ErrStructure = errors.New("signal store content is invalid")
	// ErrDuplicate means a signal with the same id is already stored.
	ErrDuplicate = errors.New("signal id already stored")
)

// Store is an append-only signal collection with a processed flag per signal.
type Store interface {
	// Append adds sig at the end, evicting the oldest entries beyond the retention bound.
	// An id that is already stored fails with ErrDuplicate.
	Append(ctx context.Context, sig model.Signal) error
	// ReadAll returns every stored signal in persisted order.
	ReadAll(ctx context.Context) ([]model.Signal, error)
	// MarkProcessed flags the given ids as processed. Unknown ids are ignored.
	MarkProcessed(ctx context.Context, ids ...string) error
}

// Unprocessed filters signals that still need to be dispatched.
func Unprocessed(signals []model.Signal) []model.Signal {
	out := make([]model.Signal, 0, len(signals))
	for _, s := range signals {
		if !s.IsProcessed {
			out = append(out, s)
		}
	}
	return out
}

// trim keeps the newest limit entries.
func trim(signals []model.Signal, limit int) []model.Signal {
	if limit <= 0 || len(signals) <= limit {
		return signals
	}
	return append([]model.Signal(nil), signals[len(signals)-limit:]...)
}

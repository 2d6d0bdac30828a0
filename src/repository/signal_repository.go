package repository

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"signalbridge/src/database"
	"signalbridge/src/model"
	"signalbridge/src/store"
)

// SignalRepository is the database-backed signal store.
type SignalRepository struct {
	db        *gorm.DB
	retention int
}

// Compile-time interface check
var _ store.Store = (*SignalRepository)(nil)

// NewSignalRepository creates a repository on the main database.
func NewSignalRepository(retention int) *SignalRepository {
	logger.WithField("component", "SignalRepository").
		Info("Creating new SignalRepository with MainDB")

	return &SignalRepository{
		db:        database.MainDB,
		retention: retention,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *SignalRepository) WithDB(db *gorm.DB) *SignalRepository {
	return &SignalRepository{db: db, retention: r.retention}
}

// appendOrder is the persisted order of signals, oldest first.
const appendOrder = "seq ASC, id ASC"

// Append inserts sig with the next sequence number and evicts the oldest rows beyond the retention bound in the same transaction.
func (r *SignalRepository) Append(ctx context.Context, sig model.Signal) error {
	fields := logger.Fields{
		"repo":      "SignalRepository",
		"op":        "Append",
		"signal_id": sig.ID,
		"symbol":    sig.Symbol,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.Signal{}).Where("id = ?", sig.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: %s", store.ErrDuplicate, sig.ID)
		}

		var last int64
		if err := tx.Model(&model.Signal{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
			return err
		}
		sig.Seq = last + 1

		if err := tx.Create(&sig).Error; err != nil {
			return err
		}
		if r.retention <= 0 {
			return nil
		}

		var ids []string
		if err := tx.Model(&model.Signal{}).
			Order(appendOrder).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) <= r.retention {
			return nil
		}

		evict := ids[:len(ids)-r.retention]

		fields["evicted"] = len(evict)
		return tx.Where("id IN ?", evict).Delete(&model.Signal{}).Error
	})
	if errors.Is(err, store.ErrDuplicate) {
		logger.WithFields(fields).Warn("Signal id already stored")
		return err
	}
	if err != nil {
		logger.WithFields(fields).WithError(err).Error("Failed to append signal")
		return fmt.Errorf("%w: %v", store.ErrIO, err)
	}

	logger.WithFields(fields).Debug("Signal appended")
	return nil
}

// ReadAll returns signals in append order, matching the file store.
func (r *SignalRepository) ReadAll(ctx context.Context) ([]model.Signal, error) {
	var signals []model.Signal

	err := r.db.WithContext(ctx).
		Order(appendOrder).
		Find(&signals).Error
	if err != nil {
		logger.WithFields(logger.Fields{
			"repo": "SignalRepository",
			"op":   "ReadAll",
		}).WithError(err).Error("Failed to read signals")
		return nil, fmt.Errorf("%w: %v", store.ErrIO, err)
	}

	if signals == nil {
		signals = []model.Signal{}
	}
	return signals, nil
}

// MarkProcessed flips is_processed for the given ids in a single statement.
func (r *SignalRepository) MarkProcessed(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).
		Model(&model.Signal{}).
		Where("id IN ? AND is_processed = ?", ids, false).
		Update("is_processed", true)
	if res.Error != nil {
		logger.WithFields(logger.Fields{
			"repo":  "SignalRepository",
			"op":    "MarkProcessed",
			"count": len(ids),
		}).WithError(res.Error).Error("Failed to mark signals as processed")
		return fmt.Errorf("%w: %v", store.ErrIO, res.Error)
	}

	logger.WithFields(logger.Fields{
		"repo":    "SignalRepository",
		"op":      "MarkProcessed",
		"updated": res.RowsAffected,
	}).Debug("Signals marked as processed")
	return nil
}

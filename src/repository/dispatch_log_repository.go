package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"signalbridge/src/database"
	"signalbridge/src/model"
)

// DispatchLogRepository records what the consumer handed to the executor.
type DispatchLogRepository struct {
	db *gorm.DB
}

func NewDispatchLogRepository() *DispatchLogRepository {
	return &DispatchLogRepository{db: database.MainDB}
}

func (r *DispatchLogRepository) WithDB(db *gorm.DB) *DispatchLogRepository {
	return &DispatchLogRepository{db: db}
}

// Record inserts a dispatch log row.
func (r *DispatchLogRepository) Record(ctx context.Context, entry *model.DispatchLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.WithFields(logger.Fields{
			"repo":      "DispatchLogRepository",
			"op":        "Record",
			"signal_id": entry.SignalID,
		}).WithError(err).Error("Failed to record dispatch log")
		return err
	}
	return nil
}

// FindBySignalID returns every dispatch of a signal, oldest first.
func (r *DispatchLogRepository) FindBySignalID(ctx context.Context, signalID string) ([]model.DispatchLog, error) {
	var logs []model.DispatchLog
	err := r.db.WithContext(ctx).
		Where("signal_id = ?", signalID).
		Order("dispatched_at ASC, id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// FindLatest returns the newest dispatch logs.
func (r *DispatchLogRepository) FindLatest(ctx context.Context, limit int) ([]model.DispatchLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var logs []model.DispatchLog
	err := r.db.WithContext(ctx).
		Order("dispatched_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

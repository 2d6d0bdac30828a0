// model/dispatch_log.go
package model

import "time"

// DispatchStatus constants represent the outcome of handing a signal to the executor.
const (
	DispatchStatusListened = "listened"
	DispatchStatusError    = "error"
)

// DispatchLog stores the result of each dispatch performed by the consumer loop.
// A signal may have more than one row when it is re-delivered after a crash.
type DispatchLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SignalID string `gorm:"size:64;index;not null" json:"signal_id"`

	// Snapshot of the resolved order intent
	Action     string   `gorm:"size:16" json:"action"`
	Symbol     string   `gorm:"size:64" json:"symbol"`
	Volume     float64  `json:"volume"`
	EntryPrice *float64 `json:"entry_price,omitempty"`
	StopLoss   *float64 `json:"stop_loss,omitempty"`
	TakeProfit *float64 `json:"take_profit,omitempty"`

	Status       string    `gorm:"size:50;not null" json:"status"` // see DispatchStatus* constants
	ErrorMessage *string   `json:"error_message,omitempty"`
	DispatchedAt time.Time `gorm:"index" json:"dispatched_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName allows you to control the exact table name for dispatch logs.
func (DispatchLog) TableName() string {
	return "dispatch_logs"
}

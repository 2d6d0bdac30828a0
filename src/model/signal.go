package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SignalType is the trading direction extracted from a message.
type SignalType string

const (
	SignalTypeBuy     SignalType = "Buy"
	SignalTypeSell    SignalType = "Sell"
	SignalTypeClose   SignalType = "Close"
	SignalTypeUnknown SignalType = "Unknown"
)

// DefaultSignalSource is used when the transport does not say where a message came from.
const DefaultSignalSource = "Telegram"

// legacySignalTypes maps the numeric enum written by older producers.
var legacySignalTypes = []SignalType{
	SignalTypeBuy,
	SignalTypeSell,
	SignalTypeClose,
	SignalTypeUnknown,
}

// Valid reports whether the type is one of the known values.
func (t SignalType) Valid() bool {
	switch t {
	case SignalTypeBuy, SignalTypeSell, SignalTypeClose, SignalTypeUnknown:
		return true
	}
	return false
}

// Actionable reports whether a signal of this type may reach the execution layer.
func (t SignalType) Actionable() bool {
	return t == SignalTypeBuy || t == SignalTypeSell || t == SignalTypeClose
}

// ParseSignalType matches a type name case-insensitively. Anything else is Unknown.
func ParseSignalType(s string) SignalType {
	for _, t := range legacySignalTypes {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t
		}
	}
	return SignalTypeUnknown
}

// UnmarshalJSON accepts both the type name and the legacy numeric value.
func (t *SignalType) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*t = SignalTypeUnknown
		return nil
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 || n >= len(legacySignalTypes) {
			return fmt.Errorf("signal type: value %d out of range", n)
		}
		*t = legacySignalTypes[n]
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("signal type: %w", err)
	}
	*t = ParseSignalType(s)
	return nil
}

// Signal is a structured trading instruction extracted from a raw message.
// JSON names follow the signal file format shared with the consumer process.
type Signal struct {
	ID          string     `gorm:"primaryKey;size:64" json:"Id"`
	Type        SignalType `gorm:"size:16;not null" json:"Type"`
	Symbol      string     `gorm:"size:64;index" json:"Symbol"`
	EntryPrice  *float64   `json:"EntryPrice"`
	StopLoss    *float64   `json:"StopLoss"`
	TakeProfit  *float64   `json:"TakeProfit"`
	Volume      *float64   `json:"Volume"`
	Message     string     `gorm:"type:text" json:"Message"`
	Timestamp   time.Time  `gorm:"index" json:"Timestamp"`
	Source      string     `gorm:"size:128" json:"Source"`
	IsProcessed bool       `gorm:"not null;default:false;index" json:"IsProcessed"`
	// Seq is the append order in the database backend. The file keeps order by position.
	Seq int64 `gorm:"not null;default:0;index" json:"-"`
}

// TableName keeps the table name stable regardless of naming strategy.
func (Signal) TableName() string {
	return "signals"
}

// NewSignal creates an unprocessed Unknown signal carrying the trimmed message.
func NewSignal(message, source string) *Signal {
	if strings.TrimSpace(source) == "" {
		source = DefaultSignalSource
	}
	return &Signal{
		ID:        uuid.NewString(),
		Type:      SignalTypeUnknown,
		Message:   strings.TrimSpace(message),
		Timestamp: time.Now().UTC(),
		Source:    source,
	}
}

// String renders the signal for logs and acknowledgements.
func (s Signal) String() string {
	return fmt.Sprintf("%s %s - Entry: %s, SL: %s, TP: %s, Volume: %s",
		s.Type, s.Symbol,
		formatOptional(s.EntryPrice),
		formatOptional(s.StopLoss),
		formatOptional(s.TakeProfit),
		formatOptional(s.Volume),
	)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Float64Ptr is a small helper for optional price fields.
func Float64Ptr(v float64) *float64 {
	return &v
}

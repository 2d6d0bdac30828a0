package parser

import (
	"regexp"
	"strconv"
	"strings"

	"signalbridge/src/model"
)

var (
	instrumentField = regexp.MustCompile(`(?i)Instrument:\s*([\w.]+)`)
	priceField      = regexp.MustCompile(`(?i)Price:\s*([\d.]+)`)
	volumeField     = regexp.MustCompile(`(?i)Volume:\s*([\d.]+)`)
	sideField       = regexp.MustCompile(`(?i)Side:\s*(\w+)`)
	directionField  = regexp.MustCompile(`(?i)Direction:\s*(\w+)`)
)

// parseStructured reads "Field: value" plugin messages.
//
// Field order matters: Direction overwrites Side, and a STOP or CLOSE anywhere in the
// text overwrites both. Downstream consumers rely on this precedence.
//
// The result counts only when instrument, price or volume was found. A side or
// direction on its own is not enough.
func parseStructured(message string) (*model.Signal, bool) {
	sig := model.NewSignal(message, "")

	if m := instrumentField.FindStringSubmatch(message); m != nil {
		sig.Symbol = m[1]
	}

	if v, ok := decimalField(priceField, message); ok {
		sig.EntryPrice = model.Float64Ptr(v)
	}

	if v, ok := decimalField(volumeField, message); ok {
		sig.Volume = model.Float64Ptr(v)
	}

	if m := sideField.FindStringSubmatch(message); m != nil {
		switch strings.ToUpper(m[1]) {
		case "ASK", "SELL":
			sig.Type = model.SignalTypeSell
		case "BID", "BUY":
			sig.Type = model.SignalTypeBuy
		default:
			sig.Type = model.SignalTypeUnknown
		}
	}

	if m := directionField.FindStringSubmatch(message); m != nil {
		switch strings.ToUpper(m[1]) {
		case "BUY", "UP":
			sig.Type = model.SignalTypeBuy
		case "SELL", "DOWN":
			sig.Type = model.SignalTypeSell
		default:
			sig.Type = model.SignalTypeUnknown
		}
	}

	upper := strings.ToUpper(message)
	if strings.Contains(upper, "STOP") || strings.Contains(upper, "CLOSE") {
		sig.Type = model.SignalTypeClose
	}

	if sig.Symbol == "" && sig.EntryPrice == nil && sig.Volume == nil {
		return nil, false
	}
	return sig, true
}

func decimalField(re *regexp.Regexp, message string) (float64, bool) {
	m := re.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Package parser extracts trading signals from chat messages.
//
// Two dialects are understood. Plugin feeds send labelled fields such as
// "Instrument: EURUSD Side: BID Price: 1.085", and people write shorthand such as
// "BUY EURUSD 1.0850 SL 1.0800 TP 1.0900 0.1 lot". The labelled form is tried first;
// the keyword classifier only runs when it found nothing.
package parser

import (
	"strings"

	logger "github.com/sirupsen/logrus"

	"signalbridge/src/model"
)

// Keywords holds the upper-case keyword lists used by the keyword classifier.
type Keywords struct {
	Buy   []string `yaml:"buy"`
	Sell  []string `yaml:"sell"`
	Close []string `yaml:"close"`
}

// DefaultKeywords returns the built-in keyword lists.
func DefaultKeywords() Keywords {
	return Keywords{
		Buy:   []string{"BUY", "LONG", "BUY_SIGNAL"},
		Sell:  []string{"SELL", "SHORT", "SELL_SIGNAL"},
		Close: []string{"CLOSE", "EXIT", "CLOSE_POSITION"},
	}
}

// Parser turns raw text into at most one signal. It is safe for concurrent use.
type Parser struct {
	keywords Keywords
}

// New builds a parser. Empty lists fall back to the defaults for that type.
func New(keywords Keywords) *Parser {
	defaults := DefaultKeywords()
	return &Parser{
		keywords: Keywords{
			Buy:   normalizeKeywords(keywords.Buy, defaults.Buy),
			Sell:  normalizeKeywords(keywords.Sell, defaults.Sell),
			Close: normalizeKeywords(keywords.Close, defaults.Close),
		},
	}
}

// Keywords returns a copy of the effective keyword lists.
func (p *Parser) Keywords() Keywords {
	return Keywords{
		Buy:   append([]string(nil), p.keywords.Buy...),
		Sell:  append([]string(nil), p.keywords.Sell...),
		Close: append([]string(nil), p.keywords.Close...),
	}
}

// Parse returns the signal found in message, or nil when the message is not a signal.
// The returned signal carries the default source; transports overwrite it.
func (p *Parser) Parse(message string) *model.Signal {
	if strings.TrimSpace(message) == "" {
		return nil
	}

	if sig, ok := parseStructured(message); ok {
		logger.WithFields(logger.Fields{
			"strategy": "structured",
			"signal":   sig.String(),
		}).Debug("signal parsed")
		return sig
	}

	sig := p.parseKeywords(message)
	if sig == nil {
		logger.WithField("message", message).Debug("no signal found in message")
		return nil
	}

	logger.WithFields(logger.Fields{
		"strategy": "keywords",
		"signal":   sig.String(),
	}).Debug("signal parsed")
	return sig
}

func (p *Parser) parseKeywords(message string) *model.Signal {
	sigType := p.classify(message)
	if sigType == model.SignalTypeUnknown {
		return nil
	}

	sig := model.NewSignal(message, "")
	sig.Type = sigType
	sig.Symbol = extractSymbol(message)

	prices := extractPrices(message)
	if len(prices) > 0 {
		sig.EntryPrice = model.Float64Ptr(prices[0])
	}
	if len(prices) > 1 {
		sig.StopLoss = model.Float64Ptr(prices[1])
	}
	if len(prices) > 2 {
		sig.TakeProfit = model.Float64Ptr(prices[2])
	}

	sig.Volume = extractVolume(message)
	return sig
}

// classify checks Buy, then Sell, then Close; the first list with a hit wins.
func (p *Parser) classify(message string) model.SignalType {
	upper := strings.ToUpper(message)

	if containsAny(upper, p.keywords.Buy) {
		return model.SignalTypeBuy
	}
	if containsAny(upper, p.keywords.Sell) {
		return model.SignalTypeSell
	}
	if containsAny(upper, p.keywords.Close) {
		return model.SignalTypeClose
	}
	return model.SignalTypeUnknown
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func normalizeKeywords(in, fallback []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}

// Package intake is the producer pipeline shared by every transport:
// allow-list, parse, validate, persist, acknowledge.
package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"signalbridge/src/metrics"
	"signalbridge/src/model"
	"signalbridge/src/store"
)

// ErrorReply is sent back to the origin when a signal could not be stored.
const ErrorReply = "❌ Error processing signal. Please check the format and try again."

// ErrValidation marks a parsed signal that cannot be stored.
var ErrValidation = errors.New("signal validation failed")

type Status string

const (
	StatusIgnored  Status = "ignored"
	StatusRejected Status = "rejected"
	StatusQueued   Status = "queued"
	StatusFailed   Status = "failed"
)

// Outcome is what a transport needs to answer the origin.
type Outcome struct {
	Status Status
	Signal *model.Signal
	// Reply is the text to send back; empty means stay silent.
	Reply string
	// Reason explains a rejection.
	Reason error
}

type Parser interface {
	Parse(message string) *model.Signal
}

// Sink receives signals after they are stored, e.g. a co-located consumer.
type Sink interface {
	Enqueue(sig model.Signal)
}

type Service struct {
	parser  Parser
	store   store.Store
	allowed map[string]struct{}
	sink    Sink
	log     *logger.Entry
}

func NewService(p Parser, st store.Store, allowedSources []string, log *logger.Entry) *Service {
	if log == nil {
		log = logger.WithField("component", "intake")
	}

	allowed := make(map[string]struct{}, len(allowedSources))
	for _, src := range allowedSources {
		if src = strings.TrimSpace(src); src != "" {
			allowed[src] = struct{}{}
		}
	}

	return &Service{parser: p, store: st, allowed: allowed, log: log}
}

// WithSink hands every stored signal to sink as well.
func (s *Service) WithSink(sink Sink) *Service {
	s.sink = sink
	return s
}

// Allowed reports whether source may submit messages.
func (s *Service) Allowed(source string) bool {
	if len(s.allowed) == 0 {
		return true
	}
	_, ok := s.allowed[source]
	return ok
}

// Handle runs one message through the pipeline. The returned error is non-nil only for
// the failed status.
func (s *Service) Handle(ctx context.Context, text, source string) (Outcome, error) {
	log := s.log.WithField("source", source)

	if !s.Allowed(source) {
		log.Warn("Unauthorized access attempt")
		return s.done(source, Outcome{Status: StatusIgnored}), nil
	}

	log.WithField("message", text).Info("Received message")

	sig := s.parser.Parse(text)
	if sig == nil {
		log.Debug("No trading signal found in message")
		return s.done(source, Outcome{Status: StatusIgnored}), nil
	}
	if strings.TrimSpace(source) != "" {
		sig.Source = source
	}

	if err := Validate(*sig); err != nil {
		log.WithError(err).WithField("signal", sig.String()).Warn("Invalid signal parsed")
		return s.done(source, Outcome{Status: StatusRejected, Signal: sig, Reason: err}), nil
	}

	if err := s.store.Append(ctx, *sig); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("append").Inc()
		log.WithError(err).WithField("signal_id", sig.ID).Error("Error saving signal")
		return s.done(source, Outcome{Status: StatusFailed, Signal: sig, Reply: ErrorReply}),
			fmt.Errorf("store signal %s: %w", sig.ID, err)
	}
	metrics.SignalsStoredTotal.WithLabelValues(string(sig.Type)).Inc()

	if s.sink != nil {
		s.sink.Enqueue(*sig)
	}

	log.WithField("signal_id", sig.ID).Infof("Signal saved: %s", sig)
	return s.done(source, Outcome{Status: StatusQueued, Signal: sig, Reply: Ack(*sig)}), nil
}

func (s *Service) done(source string, out Outcome) Outcome {
	metrics.IntakeMessagesTotal.WithLabelValues(source, string(out.Status)).Inc()
	return out
}

// Validate rejects signals without a symbol or an actionable type.
func Validate(sig model.Signal) error {
	if strings.TrimSpace(sig.Symbol) == "" {
		return fmt.Errorf("%w: symbol is empty", ErrValidation)
	}
	if !sig.Type.Actionable() {
		return fmt.Errorf("%w: type %s is not actionable", ErrValidation, sig.Type)
	}
	return nil
}

// Ack is the confirmation sent back for a stored signal.
func Ack(sig model.Signal) string {
	return fmt.Sprintf("✅ Signal processed: %s %s", sig.Type, sig.Symbol)
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"

	"signalbridge/src/auth"
	"signalbridge/src/intake"
	"signalbridge/src/model"
	"signalbridge/src/store"
)

// maxMessageBytes bounds a submitted message body.
const maxMessageBytes = 64 << 10

var errEmptyMessage = errors.New("message is empty")

type messageHandler interface {
	Handle(ctx context.Context, text, source string) (intake.Outcome, error)
}

type signalReader interface {
	ReadAll(ctx context.Context) ([]model.Signal, error)
}

type submitRequest struct {
	Message string `json:"message"`
	Source  string `json:"source"`
}

type submitResponse struct {
	Status string        `json:"status"`
	Reply  string        `json:"reply,omitempty"`
	Signal *model.Signal `json:"signal,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

// SubmitSignalHandler accepts a raw message as JSON {"message","source"} or as a text/plain
// body, runs it through intake and answers with the outcome.
func SubmitSignalHandler(svc messageHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeSubmit(r)
		if err != nil {
			logger.WithError(err).Warn("invalid signal payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		if source, ok := auth.GetSourceFromContext(r.Context()); ok && req.Source == "" {
			req.Source = source
		}

		out, err := svc.Handle(r.Context(), req.Message, req.Source)

		resp := submitResponse{Status: string(out.Status), Reply: out.Reply, Signal: out.Signal}
		if out.Reason != nil {
			resp.Reason = out.Reason.Error()
		}

		status := http.StatusOK
		switch {
		case err != nil:
			status = http.StatusInternalServerError
		case out.Status == intake.StatusQueued:
			status = http.StatusAccepted
		}

		writeJSON(w, status, resp)
	}
}

func decodeSubmit(r *http.Request) (submitRequest, error) {
	body := io.LimitReader(r.Body, maxMessageBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		b, err := io.ReadAll(body)
		if err != nil {
			return submitRequest{}, err
		}
		if strings.TrimSpace(string(b)) == "" {
			return submitRequest{}, errEmptyMessage
		}
		return submitRequest{Message: string(b)}, nil
	}

	var req submitRequest
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return submitRequest{}, err
	}
	if strings.TrimSpace(req.Message) == "" {
		return submitRequest{}, errEmptyMessage
	}
	req.Source = strings.TrimSpace(req.Source)
	return req, nil
}

// ListSignalsHandler returns the stored signals, optionally only unprocessed ones and
// only the newest ?limit entries.
func ListSignalsHandler(reader signalReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unprocessed := false
		if param := r.URL.Query().Get("unprocessed"); param != "" {
			parsed, err := strconv.ParseBool(param)
			if err != nil {
				http.Error(w, "invalid unprocessed", http.StatusBadRequest)
				return
			}
			unprocessed = parsed
		}

		limit := 0
		if param := r.URL.Query().Get("limit"); param != "" {
			parsed, err := strconv.Atoi(param)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		signals, err := reader.ReadAll(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to read signals")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		if unprocessed {
			signals = store.Unprocessed(signals)
		}
		if limit > 0 && len(signals) > limit {
			signals = signals[len(signals)-limit:]
		}
		if signals == nil {
			signals = []model.Signal{}
		}

		writeJSON(w, http.StatusOK, signals)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

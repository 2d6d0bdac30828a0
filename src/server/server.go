package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logger "github.com/sirupsen/logrus"

	"signalbridge/src/handler"
	"signalbridge/src/intake"
	"signalbridge/src/metrics"
	"signalbridge/src/security"
	"signalbridge/src/store"
)

const shutdownTimeout = 5 * time.Second

// NewRouter exposes intake, listing, health and metrics endpoints.
func NewRouter(svc *intake.Service, st store.Store, tokenHash string) http.Handler {
	r := chi.NewRouter()

	// === Global Middleware ===
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("healthcheck write error")
		}
	})
	r.Handle("/metrics", metrics.Handler())

	// Token protected routes
	r.Group(func(r chi.Router) {
		r.Use(security.IntakeAuth(tokenHash))
		r.Post("/signals", handler.SubmitSignalHandler(svc))
		r.Get("/signals", handler.ListSignalsHandler(st))
	})

	return r
}

// StartServer serves h on port until ctx is done, then shuts down gracefully.
func StartServer(ctx context.Context, port string, h http.Handler) error {
	addr := ":" + port
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("Server crashed")
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown error")
		return err
	}
	return <-errCh
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"signalbridge/cmd/producer"
	"signalbridge/src/app"
	"signalbridge/src/trace"
)

// main runs the producer and the consumer in one process. Stored signals are handed to
// the consumer directly and still persisted for crash recovery.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.WithError(err).Warn("Failed to load .env")
	}
	app.SetupLogger()
	defer handlePanic()

	if err := run(); err != nil {
		logger.WithError(err).Error("Application stopped with error")
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := trace.Init(); err != nil {
		return err
	}
	defer func() { _ = trace.Shutdown(context.Background()) }()

	settings, err := app.LoadSettings()
	if err != nil {
		return err
	}

	st, closeStore, err := app.NewStore()
	if err != nil {
		return err
	}
	defer closeStore()

	consumer := app.NewConsumer(st, app.NewDispatcher(settings))
	p := &producer.Producer{Sink: consumer}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return consumer.Run(egCtx) })
	eg.Go(func() error { return p.Run(egCtx, settings, st) })
	return eg.Wait()
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Errorf("Application %s panic", app.GetConfig().AppName)
		//nolint
		time.Sleep(time.Second * 5)
	}
}

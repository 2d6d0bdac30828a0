package consumer

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"signalbridge/src/app"
	"signalbridge/src/trace"
)

// Consumer polls the signal store and dispatches new signals.
type Consumer struct{}

func (c *Consumer) Start() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if err := trace.Init(); err != nil {
		logrus.WithError(err).Error("Failed to initialize tracing")
		return err
	}
	defer func() { _ = trace.Shutdown(context.Background()) }()

	settings, err := app.LoadSettings()
	if err != nil {
		logrus.WithError(err).Error("Failed to load settings")
		return err
	}

	st, closeStore, err := app.NewStore()
	if err != nil {
		logrus.WithError(err).Error("Failed to open signal store")
		return err
	}
	defer closeStore()

	loop := app.NewConsumer(st, app.NewDispatcher(settings))
	if err := loop.Run(ctx); err != nil {
		logrus.WithError(err).Error("Consumer loop failed")
		return err
	}
	return nil
}

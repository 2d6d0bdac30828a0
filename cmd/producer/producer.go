package producer

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"signalbridge/src/app"
	"signalbridge/src/connectors"
	"signalbridge/src/intake"
	"signalbridge/src/security"
	"signalbridge/src/server"
	"signalbridge/src/store"
	"signalbridge/src/trace"
)

// Producer runs every configured intake transport against one store.
type Producer struct {
	// Sink receives stored signals when a consumer runs in the same process.
	Sink intake.Sink
}

func (p *Producer) Start() error {
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

	return p.Run(ctx, settings, st)
}

// Run serves HTTP intake and, when configured, the Telegram listener and the websocket feed
// until ctx is done.
func (p *Producer) Run(ctx context.Context, settings app.Settings, st store.Store) error {
	svc := app.NewIntake(st, settings)
	if p.Sink != nil {
		svc.WithSink(p.Sink)
	}

	eg, egCtx := errgroup.WithContext(ctx)

	router := server.NewRouter(svc, st, security.GetConfig().IntakeTokenHash)
	port := server.GetConfig().Port
	eg.Go(func() error {
		return server.StartServer(egCtx, port, router)
	})

	cfg := settings.Connectors
	var notifier connectors.Notifier
	if cfg.TelegramBotToken != "" {
		client := connectors.NewTelegramClient(cfg.TelegramBotToken, cfg.TelegramAPIURL, cfg.TelegramPollTimeout)
		listener := connectors.NewTelegramListener(client, svc, cfg.TelegramPollTimeout, cfg.TelegramDropPending,
			logrus.WithField("component", "telegram"))
		eg.Go(func() error {
			return listener.Run(egCtx)
		})

		if cfg.TelegramNotifyChatID != 0 {
			notifier = connectors.NewTelegramNotifier(client, cfg.TelegramNotifyChatID)
		}
	} else {
		logrus.Info("TELEGRAM_BOT_TOKEN not set, Telegram listener disabled")
	}

	if cfg.FeedURL != "" {
		feed := connectors.NewFeed(cfg.FeedURL, cfg.FeedName, svc, logrus.WithField("component", "feed")).
			WithMaxBackoff(cfg.FeedMaxBackoff)
		if cfg.FeedStaleAfter > 0 {
			feed.WithStaleAlert(cfg.FeedStaleAfter, notifier)
		}
		eg.Go(func() error {
			return feed.Run(egCtx)
		})
	}

	logrus.WithField("port", port).Info("Producer started")
	return eg.Wait()
}

package connectors

import (
	"context"
	"strconv"
	"time"

	logger "github.com/sirupsen/logrus"
)

type telegramAPI interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// TelegramListener feeds every text message of the bot's chats into intake and replies
// with the outcome.
type TelegramListener struct {
	api         telegramAPI
	intake      messageHandler
	log         *logger.Entry
	pollTimeout time.Duration
	dropPending bool
	maxBackoff  time.Duration
	offset      int64
}

func NewTelegramListener(api telegramAPI, h messageHandler, pollTimeout time.Duration, dropPending bool, log *logger.Entry) *TelegramListener {
	if log == nil {
		log = logger.WithField("component", "TelegramListener")
	}
	return &TelegramListener{
		api:         api,
		intake:      h,
		log:         log,
		pollTimeout: pollTimeout,
		dropPending: dropPending,
		maxBackoff:  30 * time.Second,
	}
}

// Run polls until ctx is done. Polling errors are logged and retried with backoff.
func (l *TelegramListener) Run(ctx context.Context) error {
	l.log.Info("Starting Telegram listener")

	if l.dropPending {
		l.skipPending(ctx)
	}

	backoff := time.Second
	for ctx.Err() == nil {
		updates, err := l.api.GetUpdates(ctx, l.offset, l.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			l.log.WithError(err).WithField("retry_in", backoff.String()).Error("Telegram polling error")
			if !sleep(ctx, backoff) {
				break
			}
			backoff = nextBackoff(backoff, l.maxBackoff)
			continue
		}
		backoff = time.Second

		for _, u := range updates {
			l.offset = u.UpdateID + 1
			l.handleUpdate(ctx, u)
		}
	}

	l.log.Info("Telegram listener stopped")
	return nil
}

// skipPending acknowledges the backlog accumulated while the bot was offline.
func (l *TelegramListener) skipPending(ctx context.Context) {
	updates, err := l.api.GetUpdates(ctx, -1, 0)
	if err != nil {
		l.log.WithError(err).Warn("Failed to drop pending updates")
		return
	}
	if n := len(updates); n > 0 {
		l.offset = updates[n-1].UpdateID + 1
		l.log.WithField("offset", l.offset).Info("Dropped pending updates")
	}
}

func (l *TelegramListener) handleUpdate(ctx context.Context, u Update) {
	msg := u.Message
	if msg == nil {
		msg = u.ChannelPost
	}
	if msg == nil || msg.Text == "" {
		return
	}

	username := "Unknown"
	if msg.From != nil && msg.From.Username != "" {
		username = msg.From.Username
	}
	source := strconv.FormatInt(msg.Chat.ID, 10)

	l.log.WithFields(logger.Fields{
		"chat_id":  msg.Chat.ID,
		"username": username,
	}).Debug("Telegram message received")

	out, err := l.intake.Handle(ctx, msg.Text, source)
	if err != nil {
		l.log.WithError(err).WithField("chat_id", msg.Chat.ID).Error("Error processing message")
	}

	if out.Reply == "" {
		return
	}
	if err := l.api.SendMessage(ctx, msg.Chat.ID, out.Reply); err != nil {
		l.log.WithError(err).WithField("chat_id", msg.Chat.ID).Error("Failed to send reply")
	}
}

// TelegramNotifier sends alerts to a fixed chat.
type TelegramNotifier struct {
	api    telegramAPI
	chatID int64
}

func NewTelegramNotifier(api telegramAPI, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatID: chatID}
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	return n.api.SendMessage(ctx, n.chatID, text)
}

package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TelegramBotToken    string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramAPIURL      string        `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`
	TelegramPollTimeout time.Duration `envconfig:"TELEGRAM_POLL_TIMEOUT" default:"30s"`
	TelegramDropPending bool          `envconfig:"TELEGRAM_DROP_PENDING" default:"true"`
	// Chat that receives operational alerts such as a stale feed. Zero disables alerts.
	TelegramNotifyChatID int64 `envconfig:"TELEGRAM_NOTIFY_CHAT_ID"`

	FeedURL        string        `envconfig:"FEED_URL"`
	FeedName       string        `envconfig:"FEED_NAME" default:"plugin"`
	FeedStaleAfter time.Duration `envconfig:"FEED_STALE_AFTER" default:"0s"`
	FeedMaxBackoff time.Duration `envconfig:"FEED_MAX_BACKOFF" default:"30s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

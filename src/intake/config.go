package intake

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Origins allowed to submit messages, e.g. Telegram chat ids. Empty allows every origin.
	AllowedSources []string `envconfig:"ALLOWED_SOURCES"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

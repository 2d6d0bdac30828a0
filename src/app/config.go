package app

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppName   string `envconfig:"APP_NAME" default:"signalbridge"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"debug"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"` // "text" or "json"
	// Optional YAML file with keyword lists, allow-list and symbol universe.
	SignalConfigFile string `envconfig:"SIGNAL_CONFIG_FILE"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

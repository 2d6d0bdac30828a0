package store

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendFile     = "file"
	BackendDatabase = "database"
)

type Config struct {
	Backend        string `envconfig:"STORE_BACKEND" default:"file"` // "file" or "database"
	SignalFilePath string `envconfig:"SIGNAL_FILE_PATH" default:"signals.json"`
	Retention      int    `envconfig:"SIGNAL_RETENTION" default:"100"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

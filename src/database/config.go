package database

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// postgres://... selects the postgres driver, anything else is treated as a sqlite file path or DSN.
	DatabaseURLMain string `envconfig:"DATABASE_URL_MAIN" default:"file:signalbridge.db?_busy_timeout=5000"`
	GormLogLevel    int    `envconfig:"GORM_LOG_LEVEL" default:"2"`
	MaxOpenConns    int    `envconfig:"DATABASE_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int    `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"10"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

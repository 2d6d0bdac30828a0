package executors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	// RecordDispatches writes a dispatch log row per executed signal (database backend only).
	RecordDispatches bool `envconfig:"RECORD_DISPATCHES" default:"false"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

package trace

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Enabled     bool   `envconfig:"TRACING_ENABLED" default:"false"`
	ServiceName string `envconfig:"TRACING_SERVICE_NAME" default:"signalbridge"`
	PrettyPrint bool   `envconfig:"TRACING_PRETTY_PRINT" default:"true"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

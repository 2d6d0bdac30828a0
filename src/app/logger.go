package app

import (
	"strings"

	logger "github.com/sirupsen/logrus"
)

// SetupLogger configures the standard logrus logger from LOG_LEVEL and LOG_FORMAT.
func SetupLogger() {
	configureLogger(logger.StandardLogger(), GetConfig())
}

func configureLogger(l *logger.Logger, config Config) {
	level, err := logger.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		level = logger.DebugLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(config.LogFormat, "json") {
		l.SetFormatter(&logger.JSONFormatter{})
		return
	}
	l.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

// Package app assembles the components used by the command line jobs.
package app

import (
	"fmt"

	logger "github.com/sirupsen/logrus"

	"signalbridge/src/database"
	"signalbridge/src/executors"
	"signalbridge/src/intake"
	"signalbridge/src/parser"
	"signalbridge/src/repository"
	"signalbridge/src/store"
	"signalbridge/src/strategy"
	"signalbridge/src/strategy/strategyobs"
)

// NewStore opens the configured store backend. The returned func releases it.
func NewStore() (store.Store, func(), error) {
	return openStore(store.GetConfig())
}

func openStore(config store.Config) (store.Store, func(), error) {
	switch config.Backend {
	case store.BackendFile:
		logger.WithField("path", config.SignalFilePath).Info("Using file signal store")
		return store.NewFileStore(config.SignalFilePath, config.Retention), func() {}, nil

	case store.BackendDatabase:
		if err := database.InitMainDB(); err != nil {
			return nil, nil, fmt.Errorf("init database store: %w", err)
		}
		closeDB := func() {
			if err := database.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close database")
			}
		}
		logger.Info("Using database signal store")
		return repository.NewSignalRepository(config.Retention), closeDB, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", config.Backend)
	}
}

func NewParser(settings Settings) *parser.Parser {
	return parser.New(settings.Keywords)
}

func NewIntake(st store.Store, settings Settings) *intake.Service {
	return intake.NewService(NewParser(settings), st, settings.AllowedSources,
		logger.WithField("component", "intake"))
}

// NewDispatcher builds the listening executor behind the tracing decorator.
func NewDispatcher(settings Settings) executors.Dispatcher {
	executor := strategy.NewExecutor(logger.WithField("component", "executor"), settings.Strategy)
	return strategyobs.Wrap(executor)
}

// NewConsumer builds the poll loop. Dispatches are recorded when RECORD_DISPATCHES is set
// and the database is open.
func NewConsumer(st store.Store, dispatcher executors.Dispatcher) *executors.Consumer {
	config := executors.GetConfig()
	c := executors.NewConsumer(st, dispatcher, config.PollInterval, logger.WithField("component", "consumer"))

	if config.RecordDispatches {
		if database.MainDB == nil {
			logger.Warn("RECORD_DISPATCHES needs the database store backend, dispatch log disabled")
			return c
		}
		c.WithRecorder(repository.NewDispatchLogRepository())
	}
	return c
}

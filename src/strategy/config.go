package strategy

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DefaultVolume         float64  `envconfig:"DEFAULT_VOLUME" default:"0.01"`
	DefaultStopLossPips   float64  `envconfig:"DEFAULT_STOP_LOSS_PIPS" default:"50"`
	DefaultTakeProfitPips float64  `envconfig:"DEFAULT_TAKE_PROFIT_PIPS" default:"100"`
	MaxPositions          int      `envconfig:"MAX_POSITIONS" default:"5"` // reserved, not enforced
	SymbolUniverse        []string `envconfig:"SYMBOL_UNIVERSE"`           // empty accepts any symbol
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

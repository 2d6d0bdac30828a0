package parser

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BuyKeywords   []string `envconfig:"SIGNAL_KEYWORDS_BUY" default:"BUY,LONG,BUY_SIGNAL"`
	SellKeywords  []string `envconfig:"SIGNAL_KEYWORDS_SELL" default:"SELL,SHORT,SELL_SIGNAL"`
	CloseKeywords []string `envconfig:"SIGNAL_KEYWORDS_CLOSE" default:"CLOSE,EXIT,CLOSE_POSITION"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// Keywords converts the env configuration into parser keyword lists.
func (c Config) Keywords() Keywords {
	return Keywords{
		Buy:   c.BuyKeywords,
		Sell:  c.SellKeywords,
		Close: c.CloseKeywords,
	}
}

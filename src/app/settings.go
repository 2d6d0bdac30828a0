package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"signalbridge/src/connectors"
	"signalbridge/src/intake"
	"signalbridge/src/parser"
	"signalbridge/src/strategy"
)

// Settings is the effective runtime configuration shared by the producer and consumer
// jobs. Values come from the environment; a SIGNAL_CONFIG_FILE overrides the lists it sets.
type Settings struct {
	Keywords       parser.Keywords
	AllowedSources []string
	Strategy       strategy.Config
	Connectors     connectors.Config
}

// fileSettings is the YAML document layout.
//
//	keywords:
//	  buy: [BUY, LONG]
//	allowed_sources: ["-1001234"]
//	symbols: [EURUSD, US30INDEX]
type fileSettings struct {
	Keywords       parser.Keywords `yaml:"keywords"`
	AllowedSources []string        `yaml:"allowed_sources"`
	Symbols        []string        `yaml:"symbols"`
}

// LoadSettings reads the environment and applies the optional YAML overlay.
func LoadSettings() (Settings, error) {
	settings := Settings{
		Keywords:       parser.GetConfig().Keywords(),
		AllowedSources: intake.GetConfig().AllowedSources,
		Strategy:       strategy.GetConfig(),
		Connectors:     connectors.GetConfig(),
	}

	path := GetConfig().SignalConfigFile
	if path == "" {
		return settings, nil
	}

	overlay, err := readSettingsFile(path)
	if err != nil {
		return Settings{}, err
	}
	settings.apply(overlay)
	return settings, nil
}

func readSettingsFile(path string) (fileSettings, error) {
	var fs fileSettings

	b, err := os.ReadFile(path)
	if err != nil {
		return fs, fmt.Errorf("read settings file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&fs); err != nil && !errors.Is(err, io.EOF) {
		return fs, fmt.Errorf("parse settings file %s: %w", path, err)
	}
	return fs, nil
}

func (s *Settings) apply(fs fileSettings) {
	if len(fs.Keywords.Buy) > 0 {
		s.Keywords.Buy = fs.Keywords.Buy
	}
	if len(fs.Keywords.Sell) > 0 {
		s.Keywords.Sell = fs.Keywords.Sell
	}
	if len(fs.Keywords.Close) > 0 {
		s.Keywords.Close = fs.Keywords.Close
	}
	if len(fs.AllowedSources) > 0 {
		s.AllowedSources = fs.AllowedSources
	}
	if len(fs.Symbols) > 0 {
		s.Strategy.SymbolUniverse = fs.Symbols
	}
}

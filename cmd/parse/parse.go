package parse

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"signalbridge/src/app"
)

// Parse prints the signal found in Message without storing it.
type Parse struct {
	Message string
	Out     io.Writer
}

func (p *Parse) Start() error {
	settings, err := app.LoadSettings()
	if err != nil {
		return err
	}
	out := p.Out
	if out == nil {
		out = os.Stdout
	}

	sig := app.NewParser(settings).Parse(p.Message)
	if sig == nil {
		_, err := fmt.Fprintln(out, "no signal")
		return err
	}

	b, err := json.MarshalIndent(sig, "", "  ")
	if err != nil {
		return fmt.Errorf("encode signal: %w", err)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

package token

import (
	"fmt"
	"io"
	"os"

	"signalbridge/src/security"
)

// Token prints an intake token and the bcrypt hash to configure as INTAKE_TOKEN_HASH.
// An empty Value generates a new token.
type Token struct {
	Value string
	Out   io.Writer
}

func (t *Token) Start() error {
	out := t.Out
	if out == nil {
		out = os.Stdout
	}

	value := t.Value
	if value == "" {
		value = security.GenerateToken()
	}

	hash, err := security.HashToken(value)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "token: %s\nINTAKE_TOKEN_HASH=%s\n", value, hash)
	return err
}

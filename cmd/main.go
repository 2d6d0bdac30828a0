package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"signalbridge/cmd/consumer"
	"signalbridge/cmd/parse"
	"signalbridge/cmd/producer"
	"signalbridge/cmd/signals"
	"signalbridge/cmd/token"
	"signalbridge/src/app"
)

var Version string

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "signalbridge"
	cliApp.Usage = "Chat trading signal intake and dispatch"
	cliApp.Version = Version
	cliApp.Before = setup

	cliApp.Commands = []cli.Command{
		producerCMD,
		consumerCMD,
		parseCMD,
		signalsCMD,
		tokenCMD,
	}

	if err := cliApp.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	producerCMD = cli.Command{
		Name:        "producer",
		Usage:       "run the intake transports",
		Action:      producerAction,
		Description: `Serve HTTP intake and, when configured, the Telegram listener and websocket feed`,
	}
	consumerCMD = cli.Command{
		Name:        "consumer",
		Usage:       "run the consumer loop",
		Action:      consumerAction,
		Description: `Poll the signal store and dispatch unprocessed signals`,
	}
	parseCMD = cli.Command{
		Name:        "parse",
		Usage:       "parse a message and print the signal",
		Action:      parseAction,
		ArgsUsage:   "<message>",
		Description: `Run the parsing engine on a message without storing anything`,
	}
	signalsCMD = cli.Command{
		Name:   "signals",
		Usage:  "list stored signals",
		Action: signalsAction,
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "unprocessed, u", Usage: "only signals not yet dispatched"},
		},
		Description: `Print the content of the configured signal store`,
	}
	tokenCMD = cli.Command{
		Name:      "token",
		Usage:     "generate an intake token and its hash",
		Action:    tokenAction,
		ArgsUsage: "[token]",
		Description: `Print a token for the X-Intake-Token header and the bcrypt hash to set as
INTAKE_TOKEN_HASH. A token given as argument is hashed instead of a new one.`,
	}
)

func setup(_ *cli.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	app.SetupLogger()
	return nil
}

func producerAction(_ *cli.Context) error {
	logrus.Info("Starting producer CMD")

	p := &producer.Producer{}
	if err := p.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}
	return nil
}

func consumerAction(_ *cli.Context) error {
	logrus.Info("Starting consumer CMD")

	c := &consumer.Consumer{}
	if err := c.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}
	return nil
}

func parseAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.NewExitError("parse needs a message", 2)
	}
	p := &parse.Parse{Message: c.Args().First()}
	return p.Start()
}

func signalsAction(c *cli.Context) error {
	s := &signals.Signals{Unprocessed: c.Bool("unprocessed")}
	return s.Start()
}

func tokenAction(c *cli.Context) error {
	t := &token.Token{Value: c.Args().First()}
	return t.Start()
}

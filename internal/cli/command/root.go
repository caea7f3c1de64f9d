package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tachikv-go/internal/cli/connection"
	"github.com/yndnr/tachikv-go/internal/infra/buildinfo"
)

// App returns the tachikv-cli application.
func App() *cli.App {
	return &cli.App{
		Name:    "tachikv-cli",
		Usage:   "Command-line client for tachikv",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Value:   "127.0.0.1:6379",
				Usage:   "Server address (host:port)",
				EnvVars: []string{"TACHIKV_CLI_ADDR"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: connection.DefaultTimeout,
				Usage: "Dial and request timeout",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "ping",
				Usage:  "Check server liveness",
				Action: func(c *cli.Context) error { return doCommand(c, "PING") },
			},
			{
				Name:      "get",
				Usage:     "Fetch the value of a key",
				ArgsUsage: "KEY",
				Action:    exactArgs(1, "GET"),
			},
			{
				Name:      "set",
				Usage:     "Store a value under a key",
				ArgsUsage: "KEY VALUE",
				Action:    exactArgs(2, "SET"),
			},
			{
				Name:      "del",
				Usage:     "Delete one or more keys",
				ArgsUsage: "KEY [KEY ...]",
				Action:    atLeastArgs(1, "DEL"),
			},
			{
				Name:      "keys",
				Usage:     "List keys matching a glob pattern",
				ArgsUsage: "PATTERN",
				Action:    exactArgs(1, "KEYS"),
			},
			{
				Name:   "flushdb",
				Usage:  "Drop every key and reclaim the arena",
				Action: func(c *cli.Context) error { return doCommand(c, "FLUSHDB") },
			},
			{
				Name:   "info",
				Usage:  "Show server statistics",
				Action: func(c *cli.Context) error { return doCommand(c, "INFO") },
			},
			{
				Name:      "raw",
				Usage:     "Send an arbitrary command",
				ArgsUsage: "VERB [ARG ...]",
				Action:    atLeastArgs(1, ""),
			},
		},
	}
}

// exactArgs wraps a verb requiring exactly n positional arguments.
func exactArgs(n int, verb string) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() != n {
			return fmt.Errorf("expected %d argument(s), got %d", n, c.NArg())
		}
		return doCommand(c, verb, c.Args().Slice()...)
	}
}

// atLeastArgs wraps a verb requiring n or more positional arguments.
// An empty verb sends the arguments as-is (the raw command).
func atLeastArgs(n int, verb string) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() < n {
			return fmt.Errorf("expected at least %d argument(s), got %d", n, c.NArg())
		}
		return doCommand(c, verb, c.Args().Slice()...)
	}
}

func doCommand(c *cli.Context, verb string, args ...string) error {
	tokens := args
	if verb != "" {
		tokens = append([]string{verb}, args...)
	}

	client, err := connection.Dial(c.String("addr"), c.Duration("timeout"))
	if err != nil {
		return err
	}
	defer client.Close()

	reply, err := client.Do(tokens...)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, reply.String())
	if reply.IsError() {
		return cli.Exit("", 1)
	}
	return nil
}

package history

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/cyberhook/cmd"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

type Cmd struct {
	flags       *flag.FlagSet
	configFlags cmd.ConfigFlags
	clear       bool
	limit       int
}

func NewCmd() func() (cli.Command, error) {
	return func() (cli.Command, error) {
		c := &Cmd{}
		err := c.init()
		return c, err
	}
}

var _ cli.Command = (*Cmd)(nil)
var _ cli.CommandFactory = NewCmd()

func (c *Cmd) init() error {
	c.flags = flag.NewFlagSet("history", flag.ContinueOnError)
	c.configFlags.Register(c.flags)
	c.flags.BoolVar(&c.clear, "clear", false, "Remove all sent messages from history")
	c.flags.IntVar(&c.limit, "limit", 0, "Only print the N most recent messages, 0 means all")
	return nil
}

func (c *Cmd) Help() string {
	return `Usage: cyberhook history [options]

  Print sent messages, newest first.

Options:

  -clear        Remove all sent messages from history
  -limit        Only print the N most recent messages, 0 means all
  -config, -c   Config file to load (default: config.yml)
  -env          Env file to load (default: .env)
`
}

func (c *Cmd) Synopsis() string {
	return `Print or clear sent message history`
}

func (c *Cmd) Run(args []string) int {
	err := c.flags.Parse(args)
	if err != nil {
		return cmd.Fail("error parsing argument", err)
	}

	if c.limit < 0 {
		return cmd.Fail("invalid argument", fmt.Errorf("limit cannot be negative"))
	}

	cfg, err := c.configFlags.Load()
	if err != nil {
		return cmd.Fail("error load config", err)
	}

	rt, err := cmd.NewRuntime(context.Background(), cfg)
	defer func() {
		if _err := rt.Close(); _err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error close: %s\n", _err)
		}
	}()

	if err != nil {
		return cmd.Fail("error prepare", err)
	}

	svc := rt.Services.Submit()
	if c.clear {
		out, _err := svc.ClearHistory(rt.Ctx)
		if _err != nil {
			return cmd.Fail("cannot clear history", _err)
		}

		if !out.Persisted {
			return cmd.Fail("cannot clear history", fmt.Errorf("store write failed"))
		}

		_, _ = fmt.Fprintln(os.Stdout, "history cleared")
		return cmd.ExitSuccess
	}

	err = cmd.PrintJSON(os.Stdout, Recent(svc.State(rt.Ctx).Messages, c.limit))
	if err != nil {
		return cmd.Fail("error print result", err)
	}

	return cmd.ExitSuccess
}

// Recent returns at most limit messages from the newest first list, limit <= 0 means all.
func Recent(messages []webhook.HistoryMessage, limit int) []webhook.HistoryMessage {
	if messages == nil {
		messages = []webhook.HistoryMessage{}
	}

	if limit <= 0 || limit >= len(messages) {
		return messages
	}

	return messages[:limit]
}

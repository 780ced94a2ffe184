package serve

import (
	"context"
	"flag"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/cyberhook/cmd"
	"github.com/yusufsyaifudin/cyberhook/extd"
)

type Cmd struct {
	flags       *flag.FlagSet
	configFlags cmd.ConfigFlags
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
	c.flags = flag.NewFlagSet("serve", flag.ContinueOnError)
	c.configFlags.Register(c.flags)
	return nil
}

func (c *Cmd) Help() string {
	return `Usage: cyberhook serve [options]

  Start HTTP API to compose and send Discord webhook messages.

Options:

  -config, -c   Config file to load (default: config.yml)
  -env          Env file to load (default: .env)
`
}

func (c *Cmd) Synopsis() string {
	return `Start HTTP API server`
}

func (c *Cmd) Run(args []string) int {
	err := c.flags.Parse(args)
	if err != nil {
		return cmd.Fail("error parsing argument", err)
	}

	cfg, err := c.configFlags.Load()
	if err != nil {
		return cmd.Fail("error load config", err)
	}

	err = extd.RunServer(context.Background(), cfg)
	if err != nil {
		return cmd.Fail("server stopped", err)
	}

	return cmd.ExitSuccess
}

package configure

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/cyberhook/cmd"
	"github.com/yusufsyaifudin/cyberhook/internal/svc/submitsvc"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

type Cmd struct {
	flags       *flag.FlagSet
	configFlags cmd.ConfigFlags
	url         string
	username    string
	avatarURL   string
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
	c.flags = flag.NewFlagSet("configure", flag.ContinueOnError)
	c.configFlags.Register(c.flags)
	c.flags.StringVar(&c.url, "url", "", "Discord webhook URL, empty string to disconnect")
	c.flags.StringVar(&c.username, "username", "", "Display name, empty string to reset")
	c.flags.StringVar(&c.avatarURL, "avatar", "", "Avatar image URL")
	return nil
}

func (c *Cmd) Help() string {
	return `Usage: cyberhook configure [options]

  Show or change the webhook configuration. Only the given flags are changed,
  without any flag it prints the current configuration.

Options:

  -url          Discord webhook URL, empty string to disconnect
  -username     Display name, empty string to reset to default
  -avatar       Avatar image URL
  -config, -c   Config file to load (default: config.yml)
  -env          Env file to load (default: .env)
`
}

func (c *Cmd) Synopsis() string {
	return `Show or change the webhook configuration`
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
	state := svc.State(rt.Ctx)

	newConfig, changed := c.merge(state.CurrentConfig)
	if !changed {
		err = cmd.PrintJSON(os.Stdout, state.CurrentConfig)
		if err != nil {
			return cmd.Fail("error print result", err)
		}

		return cmd.ExitSuccess
	}

	out, err := svc.UpdateConfig(rt.Ctx, submitsvc.InputUpdateConfig{Config: newConfig})
	if err != nil {
		return cmd.Fail("cannot update configuration", err)
	}

	if !out.Persisted {
		_, _ = fmt.Fprintln(os.Stderr, "warning: configuration cannot be saved")
	}

	err = cmd.PrintJSON(os.Stdout, out.Config)
	if err != nil {
		return cmd.Fail("error print result", err)
	}

	return cmd.ExitSuccess
}

// merge only overrides the explicitly set flags
func (c *Cmd) merge(current webhook.Config) (cfg webhook.Config, changed bool) {
	cfg = current
	c.flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.URL = c.url
			changed = true
		case "username":
			cfg.Username = c.username
			changed = true
		case "avatar":
			cfg.AvatarURL = c.avatarURL
			changed = true
		}
	})

	return
}

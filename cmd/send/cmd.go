package send

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/cyberhook/cmd"
	"github.com/yusufsyaifudin/cyberhook/internal/svc/submitsvc"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

// stringSlice collects repeated flag, i.e: -file a.png -file b.png
type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type Cmd struct {
	flags       *flag.FlagSet
	configFlags cmd.ConfigFlags
	content     string
	embedsFile  string
	files       stringSlice
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
	c.flags = flag.NewFlagSet("send", flag.ContinueOnError)
	c.configFlags.Register(c.flags)
	c.flags.StringVar(&c.content, "content", "", "Message content, use - to read from stdin")
	c.flags.StringVar(&c.embedsFile, "embeds", "", "JSON file contains array of embed")
	c.flags.Var(&c.files, "file", "File to attach, can be repeated")
	return nil
}

func (c *Cmd) Help() string {
	return `Usage: cyberhook send [options]

  Send one message to the configured Discord webhook and record it in history.

Options:

  -content      Message content, use - to read from stdin
  -embeds       JSON file contains array of embed
  -file         File to attach, can be repeated up to 10 times
  -config, -c   Config file to load (default: config.yml)
  -env          Env file to load (default: .env)
`
}

func (c *Cmd) Synopsis() string {
	return `Send a message to the configured webhook`
}

func (c *Cmd) Run(args []string) int {
	err := c.flags.Parse(args)
	if err != nil {
		return cmd.Fail("error parsing argument", err)
	}

	input, err := c.input()
	if err != nil {
		return cmd.Fail("invalid message", err)
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

	out, err := rt.Services.Submit().Submit(rt.Ctx, input)
	if err != nil {
		return cmd.Fail("send failed", err)
	}

	if !out.Persisted {
		_, _ = fmt.Fprintln(os.Stderr, "warning: message was sent but history cannot be saved")
	}

	err = cmd.PrintJSON(os.Stdout, out.Message)
	if err != nil {
		return cmd.Fail("error print result", err)
	}

	return cmd.ExitSuccess
}

func (c *Cmd) input() (input submitsvc.InputSubmit, err error) {
	input.Content = c.content
	if c.content == "-" {
		var b []byte
		b, err = readAll(os.Stdin)
		if err != nil {
			err = fmt.Errorf("cannot read content from stdin: %w", err)
			return
		}

		input.Content = string(b)
	}

	if c.embedsFile != "" {
		var b []byte
		b, err = os.ReadFile(c.embedsFile)
		if err != nil {
			err = fmt.Errorf("cannot read embeds file: %w", err)
			return
		}

		err = json.Unmarshal(b, &input.Embeds)
		if err != nil {
			err = fmt.Errorf("cannot parse embeds file %s: %w", c.embedsFile, err)
			return
		}
	}

	if len(c.files) > webhook.MaxAttachments {
		err = webhook.ErrTooManyAttachments
		return
	}

	for _, file := range c.files {
		var attachment webhook.Attachment
		attachment, err = ReadAttachment(file)
		if err != nil {
			return
		}

		input.Attachments = append(input.Attachments, attachment)
	}

	return
}

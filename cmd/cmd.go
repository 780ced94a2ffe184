package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/cyberhook/container"
	"github.com/yusufsyaifudin/cyberhook/extd"
	"go.uber.org/zap/zapcore"
)

const (
	ExitSuccess = 0
	ExitErr     = -1
)

const (
	DefaultConfigFile = "config.yml"
	DefaultEnvFile    = ".env"
)

// ConfigFlags is shared by every sub command.
type ConfigFlags struct {
	ConfigFile string
	EnvFile    string
}

func (c *ConfigFlags) Register(flags *flag.FlagSet) {
	flags.StringVar(&c.ConfigFile, "config", DefaultConfigFile,
		"Config file to load")
	flags.StringVar(&c.ConfigFile, "c", DefaultConfigFile,
		"Alias for config file to load")
	flags.StringVar(&c.EnvFile, "env", DefaultEnvFile,
		"Env file to load before reading environment variables")
}

func (c *ConfigFlags) Load() (container.Config, error) {
	return container.LoadConfig(c.ConfigFile, c.EnvFile)
}

// Runtime is for one shot command. Log goes to stderr so stdout only contains the command output.
type Runtime struct {
	Ctx      context.Context
	Services container.Services
	closer   io.Closer
}

func (r *Runtime) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}

	return r.closer.Close()
}

func NewRuntime(ctx context.Context, cfg container.Config) (rt *Runtime, err error) {
	ctx = extd.SetupLog(ctx, os.Stderr, zapcore.WarnLevel)

	err = extd.RegisterDefaultBackends(ctx, cfg.Webhook)
	if err != nil {
		err = fmt.Errorf("register default backend failed: %w", err)
		return
	}

	services, closer, err := extd.Prepare(ctx, cfg)
	rt = &Runtime{
		Ctx:      ctx,
		Services: services,
		closer:   closer,
	}

	if err != nil {
		err = fmt.Errorf("prepare services failed: %w", err)
		return
	}

	return
}

// PrintJSON writes v as indented JSON followed by new line.
func PrintJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Fail prints err to stderr and returns ExitErr.
func Fail(format string, err error) int {
	_, _ = fmt.Fprintf(os.Stderr, format+": %s\n", err)
	return ExitErr
}

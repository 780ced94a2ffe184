package cmd_test

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/cyberhook/cmd"
	"github.com/yusufsyaifudin/cyberhook/container"
	"github.com/yusufsyaifudin/cyberhook/internal/svc/submitsvc"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

func TestConfigFlags(t *testing.T) {
	var c cmd.ConfigFlags
	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	c.Register(flags)

	require.NoError(t, flags.Parse([]string{"-c", "custom.yml", "-env", "custom.env"}))
	assert.Equal(t, "custom.yml", c.ConfigFile)
	assert.Equal(t, "custom.env", c.EnvFile)
}

func TestPrintJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, cmd.PrintJSON(buf, webhook.Config{URL: "u", Username: "n"}))
	assert.JSONEq(t, `{"url":"u","username":"n"}`, buf.String())
	assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
}

func TestRuntime(t *testing.T) {
	cfg := container.DefaultConfig()
	cfg.StoreResources = container.ConfigStoreResources{
		"local": {Driver: container.DriverFile, File: container.ConfigFileStore{Path: t.TempDir()}},
	}
	cfg.Webhook.Backend = "noop"

	rt, err := cmd.NewRuntime(context.Background(), cfg)
	require.NoError(t, err)

	svc := rt.Services.Submit()
	_, err = svc.UpdateConfig(rt.Ctx, submitsvc.InputUpdateConfig{
		Config: webhook.Config{URL: "https://discord.com/api/webhooks/1/token"},
	})
	require.NoError(t, err)

	out, err := svc.Submit(rt.Ctx, submitsvc.InputSubmit{Content: "hello"})
	require.NoError(t, err)
	assert.True(t, out.Persisted)
	require.NoError(t, rt.Close())

	// next process sees the same history
	rt, err = cmd.NewRuntime(context.Background(), cfg)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, rt.Close())
	}()

	state := rt.Services.Submit().State(rt.Ctx)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "hello", state.Messages[0].Content)
	assert.Equal(t, "https://discord.com/api/webhooks/1/token", state.CurrentConfig.URL)

	_, err = os.Stat(filepath.Join(cfg.StoreResources["local"].File.Path, cfg.Session.StorageKey+".json"))
	assert.NoError(t, err)
}

func TestRuntime_UnknownStore(t *testing.T) {
	cfg := container.DefaultConfig()
	cfg.Session.StoreLabel = "missing"

	rt, err := cmd.NewRuntime(context.Background(), cfg)
	assert.Error(t, err)
	assert.NoError(t, rt.Close())
}

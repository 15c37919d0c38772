package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/vaultbot/core/config"
	coretelegram "github.com/m3rciful/vaultbot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type app struct{ opts coretelegram.RunOptions }

func (a app) TelegramRunOptions() (coretelegram.RunOptions, error) { return a.opts, nil }

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("VAULT_CFG", "")
	p, err := ResolveConfigPath(" flag.yaml ", "VAULT_CFG", "config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "flag.yaml", p)

	p, err = ResolveConfigPath("", "VAULT_CFG", "config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", p)

	t.Setenv("VAULT_CFG", "env.yaml")
	p, err = ResolveConfigPath("", "VAULT_CFG", "config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "env.yaml", p)

	t.Setenv("VAULT_CFG", "")
	_, err = ResolveConfigPath("", "VAULT_CFG", "")
	assert.Error(t, err)
}

func TestRunWrapsLifecycleHooks(t *testing.T) {
	var calls []string
	err := Run(Options{
		ConfigPath: "config.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			calls = append(calls, "load:"+path)
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(ctx context.Context, cfg ConfigCarrier) (TelegramApp, error) {
			calls = append(calls, "bootstrap")
			return app{opts: coretelegram.RunOptions{
				OnStart: func(context.Context, coretelegram.Runtime) error {
					calls = append(calls, "start")
					return nil
				},
				OnStop: func(context.Context, coretelegram.Runtime) error {
					calls = append(calls, "stop")
					return nil
				},
			}}, nil
		},
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"load:config.yaml", "bootstrap", "start", "stop"}, calls)
}

func TestRunReportsBootstrapFailure(t *testing.T) {
	boom := errors.New("boom")
	err := Run(Options{
		ConfigPath: "x.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) { return carrier{cfg: &coreconfig.Config{}}, nil },
		Bootstrap:  func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, boom },
	})
	assert.ErrorIs(t, err, boom)

	err = Run(Options{
		ConfigPath: "x.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) { return carrier{}, nil },
		Bootstrap:  func(context.Context, ConfigCarrier) (TelegramApp, error) { return app{}, nil },
	})
	assert.Error(t, err)
}

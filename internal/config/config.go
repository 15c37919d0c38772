// Package config holds the vaultbot configuration: the shared core sections
// plus database, storage channel, catalog limits and the health listener.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/vaultbot/core/config"
	coredatabase "github.com/m3rciful/vaultbot/core/database"
	"github.com/m3rciful/vaultbot/core/telegram/sender"
	"github.com/m3rciful/vaultbot/internal/catalog"
	"github.com/m3rciful/vaultbot/internal/channel"
)

// ChannelConfig points at the storage channel the bot must be an admin of.
type ChannelConfig struct {
	// ID is a numeric chat id or an @username.
	ID string `yaml:"id" envconfig:"CHANNEL_ID"`
}

// HTTPConfig configures the optional health endpoint.
type HTTPConfig struct {
	// Listen is a host:port address; empty disables the server.
	Listen string `yaml:"listen" envconfig:"HTTP_LISTEN"`
}

// SendConfig tunes retries of outbound channel calls. Zero values use the
// dispatcher defaults; a negative MaxRetries disables retrying.
type SendConfig struct {
	MaxRetries     int `yaml:"max_retries" envconfig:"SEND_MAX_RETRIES"`
	RetryBackoffMS int `yaml:"retry_backoff_ms" envconfig:"SEND_RETRY_BACKOFF_MS"`
}

// Options maps the section onto dispatcher options.
func (s SendConfig) Options() sender.Options {
	return sender.Options{
		MaxRetries:   s.MaxRetries,
		RetryBackoff: time.Duration(s.RetryBackoffMS) * time.Millisecond,
	}
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Channel  ChannelConfig       `yaml:"channel"`
	Catalog  catalog.Limits      `yaml:"catalog"`
	HTTP     HTTPConfig          `yaml:"http"`
	Send     SendConfig          `yaml:"send"`

	channelRef channel.ChatRef
}

// CoreConfig exposes the shared core section.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// ChannelRef returns the validated storage channel reference.
func (c *Config) ChannelRef() channel.ChatRef { return c.channelRef }

// Load reads YAML from path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if c.Telegram.OwnerID == 0 {
		return fmt.Errorf("telegram.owner_id is required")
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	ref, err := channel.ParseChatRef(c.Channel.ID)
	if err != nil {
		return fmt.Errorf("channel.id: %w", err)
	}
	c.channelRef = ref
	c.Catalog = c.Catalog.WithDefaults()
	c.HTTP.Listen = strings.TrimSpace(c.HTTP.Listen)
	if c.Send.RetryBackoffMS < 0 {
		return fmt.Errorf("send.retry_backoff_ms must be >= 0")
	}
	return nil
}

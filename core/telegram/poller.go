package telegram

import (
	"net"
	"strconv"
	"time"

	coreconfig "github.com/m3rciful/vaultbot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// allowedUpdates lists the only update types the bot handles.
var allowedUpdates = []string{"message", "callback_query", "inline_query"}

// pollTimeout is the long-poll timeout from cfg, defaulting to 10s.
func pollTimeout(cfg coreconfig.TelegramConfig) time.Duration {
	if cfg.LongPollTimeoutSeconds <= 0 {
		return defaultLongPollTimeout
	}
	return time.Duration(cfg.LongPollTimeoutSeconds) * time.Second
}

// newPoller returns a webhook listener when cfg selects webhook mode and
// a long poller otherwise. cfg must already be normalized.
func newPoller(cfg *coreconfig.Config) tele.Poller {
	if cfg.Telegram.RunMode == coreconfig.RunModeWebhook {
		return &tele.Webhook{
			Listen:         net.JoinHostPort(cfg.Webhook.Listen, strconv.Itoa(cfg.Webhook.Port)),
			Endpoint:       &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
			AllowedUpdates: allowedUpdates,
		}
	}
	return &tele.LongPoller{Timeout: pollTimeout(cfg.Telegram), AllowedUpdates: allowedUpdates}
}

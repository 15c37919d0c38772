// Package channel mirrors catalog uploads into the storage channel.
package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/m3rciful/vaultbot/core/logger"
	"github.com/m3rciful/vaultbot/internal/catalog"

	tele "gopkg.in/telebot.v4"
)

// ErrNotBound is returned before the bot API has been attached.
var ErrNotBound = errors.New("channel: bot api not bound")

// API is the subset of the Bot API used by the publisher.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Raw(method string, payload interface{}) ([]byte, error)
	ChatByUsername(name string) (*tele.Chat, error)
}

// Doer runs an outbound call synchronously with retries.
type Doer interface {
	Do(ctx context.Context, action, endpoint string, run func() error) error
}

// Publisher sends uploads to the storage channel. The bot is bound after
// startup, so the publisher can be wired into services beforehand.
type Publisher struct {
	ref  ChatRef
	doer Doer

	mu  sync.RWMutex
	api API
}

// NewPublisher returns a publisher for ref. doer may be nil to call the API directly.
func NewPublisher(ref ChatRef, doer Doer) *Publisher {
	return &Publisher{ref: ref, doer: doer}
}

// Bind attaches the bot API.
func (p *Publisher) Bind(api API) {
	p.mu.Lock()
	p.api = api
	p.mu.Unlock()
}

// Ref returns the configured channel reference.
func (p *Publisher) Ref() ChatRef { return p.ref }

func (p *Publisher) client() (API, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.api == nil {
		return nil, ErrNotBound
	}
	return p.api, nil
}

func (p *Publisher) do(ctx context.Context, action, endpoint string, run func() error) error {
	if p.doer == nil {
		return run()
	}
	return p.doer.Do(ctx, action, endpoint, run)
}

// Publish sends the attachment by file id, keeping the media kind it arrived as,
// and returns the channel message id.
func (p *Publisher) Publish(ctx context.Context, a catalog.Attachment) (int, error) {
	api, err := p.client()
	if err != nil {
		return 0, err
	}
	what := Sendable(a.Kind, a.FileID, a.FileName, a.Caption)

	var msg *tele.Message
	err = p.do(ctx, "channel.publish", "send"+kindEndpoint(a.Kind), func() error {
		m, err := api.Send(p.ref, what)
		if err != nil {
			return err
		}
		msg = m
		return nil
	})
	if err != nil {
		logger.SVCChannel.Error("publish failed",
			slog.String("event", "channel.publish"),
			slog.String("channel", p.ref.String()),
			slog.String("media", string(a.Kind)),
			slog.String("err", logger.Redact(err.Error())),
		)
		return 0, err
	}
	if msg == nil {
		return 0, fmt.Errorf("channel: empty send result")
	}
	logger.SVCChannel.Debug("published",
		slog.String("event", "channel.publish"),
		slog.String("channel", p.ref.String()),
		slog.String("media", string(a.Kind)),
		slog.Int("message_id", msg.ID),
	)
	return msg.ID, nil
}

// Delete removes a channel message.
func (p *Publisher) Delete(ctx context.Context, messageID int) error {
	api, err := p.client()
	if err != nil {
		return err
	}
	params := map[string]string{
		"chat_id":    p.ref.String(),
		"message_id": strconv.Itoa(messageID),
	}
	return p.do(ctx, "channel.delete", "deleteMessage", func() error {
		_, err := api.Raw("deleteMessage", params)
		return err
	})
}

// CopyTo copies a channel message into the chat of a user.
func (p *Publisher) CopyTo(ctx context.Context, chatID int64, messageID int) error {
	api, err := p.client()
	if err != nil {
		return err
	}
	params := map[string]string{
		"chat_id":      strconv.FormatInt(chatID, 10),
		"from_chat_id": p.ref.String(),
		"message_id":   strconv.Itoa(messageID),
	}
	return p.do(ctx, "channel.copy", "copyMessage", func() error {
		_, err := api.Raw("copyMessage", params)
		return err
	})
}

// Describe returns the channel title as seen by the bot.
func (p *Publisher) Describe(ctx context.Context) (string, error) {
	api, err := p.client()
	if err != nil {
		return "", err
	}
	var chat *tele.Chat
	err = p.do(ctx, "channel.describe", "getChat", func() error {
		c, err := api.ChatByUsername(p.ref.String())
		if err != nil {
			return err
		}
		chat = c
		return nil
	})
	if err != nil {
		return "", err
	}
	if chat.Title != "" {
		return chat.Title, nil
	}
	return chat.Username, nil
}

func kindEndpoint(k catalog.MediaKind) string {
	switch k {
	case catalog.MediaPhoto:
		return "Photo"
	case catalog.MediaVideo:
		return "Video"
	case catalog.MediaAudio:
		return "Audio"
	default:
		return "Document"
	}
}

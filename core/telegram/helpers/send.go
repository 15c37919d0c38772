package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/vaultbot/core/logger"
	"github.com/m3rciful/vaultbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// outbox is the dispatcher used for replies. Nil sends inline.
var outbox atomic.Pointer[sender.Dispatcher]

// SetDispatcher routes helper sends through d; nil restores inline sending.
func SetDispatcher(d *sender.Dispatcher) { outbox.Store(d) }

// deliver queues fn on the dispatcher, or runs it inline when there is no
// dispatcher or the queue cannot take it.
func deliver(c tele.Context, action, endpoint string, fn func() error) error {
	d := outbox.Load()
	if d == nil {
		return fn()
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, action, endpoint, fn)
	if !errors.Is(err, sender.ErrQueueFull) && !errors.Is(err, sender.ErrQueueClosed) {
		return err
	}
	logger.Warn(ctx, "tg.sender", "queue.fallback",
		slog.String("op", action),
		slog.String("endpoint", endpoint),
		slog.String("err", err.Error()),
	)
	return fn()
}

func htmlOptions(markup []*tele.ReplyMarkup) *tele.SendOptions {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return opts
}

// SendText sends text to the current chat. Without options no parse mode applies.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	args := make([]any, 0, 1)
	if len(opts) > 0 && opts[0] != nil {
		args = append(args, opts[0])
	}
	return deliver(c, "send.text", "sendMessage", func() error { return c.Send(text, args...) })
}

// SendHTML sends an HTML message with optional reply markup.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, htmlOptions(markup))
}

// SendMedia sends a stored photo, video, audio or document to the current chat.
func SendMedia(c tele.Context, what tele.Sendable, markup ...*tele.ReplyMarkup) error {
	opts := htmlOptions(markup)
	return deliver(c, "send.media", "sendMedia", func() error { return c.Send(what, opts) })
}

// EditOrSendHTML replaces the message behind a callback, or sends a new one
// when the update is not a callback or the edit fails. Edits run inline so
// the screen changes before the callback is answered.
func EditOrSendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := htmlOptions(markup)
	if c.Callback() == nil {
		return SendText(c, text, opts)
	}
	switch err := c.Edit(text, opts); {
	case err == nil, errors.Is(err, tele.ErrSameMessageContent):
		return nil
	}
	return c.Send(text, opts)
}

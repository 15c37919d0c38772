package helpers

import (
	"context"
	"strings"

	"github.com/m3rciful/vaultbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// ctxKey stores the per-update context.Context on tele.Context.
const ctxKey = "logger_ctx"

// StoreContext attaches ctx to c for downstream helpers.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(ctxKey, ctx)
	}
}

// ContextFrom returns the context stored on c, if any.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxKey).(context.Context)
	return ctx, ok
}

// BuildContext returns the per-update context carrying the rid and the
// update, user and chat ids. It is created once and cached on c.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}
	updateID, userID := c.Update().ID, SenderID(c)
	var chatID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
	}

	ctx := logger.WithLogger(context.Background(), logger.Component("tg"))
	ctx = logger.WithUpdateMeta(logger.WithRID(ctx, rid), updateID, userID, chatID)
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the stored context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler != "" {
		ctx = logger.WithHandler(ctx, handler)
		StoreContext(c, ctx)
	}
	return ctx
}

// SenderID is the sender's Telegram id; 0 for channel posts.
func SenderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

// SenderName prefers "First Last" and falls back to the username.
func SenderName(c tele.Context) string {
	u := c.Sender()
	if u == nil {
		return ""
	}
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	return u.Username
}

package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/vaultbot/core/logger"
	"github.com/m3rciful/vaultbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers update ids for a short while so an update routed
// through several middleware chains is logged once.
type seenUpdates struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[int]time.Time
}

var receipts = &seenUpdates{ttl: 10 * time.Second, seen: map[int]time.Time{}}

func (s *seenUpdates) firstTime(id int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, at := range s.seen {
		if now.Sub(at) > s.ttl {
			delete(s.seen, k)
		}
	}
	if _, dup := s.seen[id]; dup {
		return false
	}
	s.seen[id] = now
	return true
}

// LoggerMiddleware builds the per-update log context (rid, ids) and emits a
// sampled update.received line describing what arrived.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		now := time.Now()
		upd := c.Update()
		c.Set("update_start", now)
		ctx := tghelpers.BuildContext(c)
		c.Set("rid", logger.RIDFrom(ctx))

		if logger.ShouldSampleDebug() && receipts.firstTime(upd.ID, now) {
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", receiptAttrs(c, upd)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context, upd tele.Update) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if u := c.Sender(); u != nil {
		if u.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
		}
		if u.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", u.LanguageCode))
		}
	}

	var payload string
	switch {
	case upd.Callback != nil:
		key, data := callbacks.ParseCallbackData(upd.Callback)
		if key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
		payload = logger.SanitizeLimit(data, 256)
	case upd.Message != nil:
		payload = logger.SanitizeLimit(c.Text(), 256)
		if kind := mediaKind(upd.Message); kind != "" {
			attrs = append(attrs, slog.String("media", kind))
		}
	case upd.Query != nil:
		payload = logger.SanitizeLimit(upd.Query.Text, 64)
	}
	if payload != "" {
		attrs = append(attrs, slog.String("payload", payload))
	}
	return attrs
}

func mediaKind(m *tele.Message) string {
	switch {
	case m.Photo != nil:
		return "photo"
	case m.Video != nil:
		return "video"
	case m.Audio != nil:
		return "audio"
	case m.Document != nil:
		return "document"
	}
	return ""
}

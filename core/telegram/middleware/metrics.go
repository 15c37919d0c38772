package middleware

import tele "gopkg.in/telebot.v4"

const replyStatsKey = "reply_stats"

// replyStats counts what a handler sent back, for the handler summary line.
type replyStats struct {
	messages int
	keyboard bool
}

// countingContext records successful sends and edits into stats.
type countingContext struct {
	tele.Context
	stats *replyStats
}

func (c countingContext) count(err error, opts []any) error {
	if err != nil {
		return err
	}
	c.stats.messages++
	c.stats.keyboard = c.stats.keyboard || carriesKeyboard(opts)
	return nil
}

func (c countingContext) Send(what any, opts ...any) error  { return c.count(c.Context.Send(what, opts...), opts) }
func (c countingContext) Reply(what any, opts ...any) error { return c.count(c.Context.Reply(what, opts...), opts) }
func (c countingContext) Edit(what any, opts ...any) error  { return c.count(c.Context.Edit(what, opts...), opts) }

func (c countingContext) EditOrSend(what any, opts ...any) error {
	return c.count(c.Context.EditOrSend(what, opts...), opts)
}

func (c countingContext) EditOrReply(what any, opts ...any) error {
	return c.count(c.Context.EditOrReply(what, opts...), opts)
}

func carriesKeyboard(opts []any) bool {
	for _, o := range opts {
		var m *tele.ReplyMarkup
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil {
				m = v.ReplyMarkup
			}
		case *tele.ReplyMarkup:
			m = v
		}
		if m != nil && len(m.InlineKeyboard)+len(m.ReplyKeyboard) > 0 {
			return true
		}
	}
	return false
}

// MessageMetricsMiddleware counts the replies a handler produces.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		stats := &replyStats{}
		c.Set(replyStatsKey, stats)
		return next(countingContext{Context: c, stats: stats})
	}
}

// GetCounters returns how many messages the handler sent and whether any
// of them carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	stats, ok := c.Get(replyStatsKey).(*replyStats)
	if !ok {
		return 0, false
	}
	return stats.messages, stats.keyboard
}

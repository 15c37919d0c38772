package middleware

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/m3rciful/vaultbot/core/logger"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures RateLimitMiddleware.
type RateLimitOptions struct {
	// Interval is the minimum gap between two updates of one user.
	Interval time.Duration
	// Exclude lists update kinds (see UpdateKind) that are never limited.
	Exclude   []string
	OnLimited tele.HandlerFunc
	// Now is overridable for tests.
	Now func() time.Time
}

// UpdateKind names the update type the way rate_limit.exclude_updates does.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// userGate keeps one token bucket per user. Buckets idle for a full
// interval are refilled anyway and get evicted on the minute sweep.
type userGate struct {
	mu       sync.Mutex
	interval time.Duration
	users    map[int64]*userLimiter
	swept    time.Time
}

type userLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

func newUserGate(interval time.Duration) *userGate {
	return &userGate{interval: interval, users: map[int64]*userLimiter{}}
}

func (g *userGate) pass(userID int64, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if now.Sub(g.swept) > time.Minute {
		for id, u := range g.users {
			if now.Sub(u.seen) >= g.interval {
				delete(g.users, id)
			}
		}
		g.swept = now
	}
	u, ok := g.users[userID]
	if !ok {
		u = &userLimiter{lim: rate.NewLimiter(rate.Every(g.interval), 1)}
		g.users[userID] = u
	}
	u.seen = now
	return u.lim.AllowN(now, 1)
}

// RateLimitMiddleware drops updates arriving within Interval of the same
// user's previous one. Dropped updates get OnLimited and no handler.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	gate := newUserGate(opts.Interval)

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		if opts.Interval <= 0 {
			return next
		}
		return func(c tele.Context) error {
			userID := tghelpers.SenderID(c)
			kind := UpdateKind(c.Update())
			if userID == 0 || slices.Contains(opts.Exclude, kind) || gate.pass(userID, now()) {
				return next(c)
			}

			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "tg.rate_limit",
				slog.String("status", "skip"),
				slog.String("kind", kind),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}

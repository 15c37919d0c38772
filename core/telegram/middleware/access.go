package middleware

import (
	"log/slog"

	"github.com/m3rciful/vaultbot/core/logger"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AccessOptions guards restricted handlers.
type AccessOptions struct {
	// Allow decides per update; nil lets everyone through.
	Allow func(c tele.Context) (bool, error)
	// OnReject answers denied updates; nil drops them silently.
	OnReject tele.HandlerFunc
}

// RestrictedMiddleware calls next only for senders Allow approves. An Allow
// error aborts the update with that error.
func RestrictedMiddleware(opts AccessOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		if opts.Allow == nil {
			return next
		}
		return func(c tele.Context) error {
			switch ok, err := opts.Allow(c); {
			case err != nil:
				return err
			case ok:
				return next(c)
			}
			logger.Debug(tghelpers.BuildContext(c), "tg", "access.denied", slog.String("status", "skip"))
			if opts.OnReject == nil {
				return nil
			}
			return opts.OnReject(c)
		}
	}
}

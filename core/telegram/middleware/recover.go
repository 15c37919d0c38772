package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/vaultbot/core/logger"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ErrPanic carries the value a handler panicked with.
type ErrPanic struct{ Value any }

func (e *ErrPanic) Error() string { return fmt.Sprintf("handler panic: %v", e.Value) }
func (e *ErrPanic) Code() string  { return "panic" }

// RecoverMiddleware turns a handler panic into an *ErrPanic and logs the
// stack, so one bad update cannot stop the bot.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err = &ErrPanic{Value: r}
			logger.Error(tghelpers.BuildContext(c), "tg", "tg.panic",
				slog.String("err", logger.Redact(err.Error())),
				slog.String("stack", string(debug.Stack())),
			)
		}()
		return next(c)
	}
}

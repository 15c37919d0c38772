package router

import (
	"log/slog"

	tg "github.com/m3rciful/vaultbot/core/telegram"
	"github.com/m3rciful/vaultbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions configures CallbackRoute.
type CallbackOptions struct {
	// NotFound is used when the registry has no not-found handler.
	NotFound tele.HandlerFunc
}

// CallbackRoute dispatches every callback query by its key. Handlers may
// answer the query themselves; otherwise an empty answer is sent afterwards
// so the client spinner stops.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		defer func() { _ = callbacks.Respond(c) }()

		key, _ := callbacks.ParseCallbackData(c.Callback())
		attrs := []slog.Attr{slog.String("cb_key", key)}
		h, ok := reg.GetCallback(key)
		if !ok {
			attrs = append(attrs, slog.String("reason", "not_found"))
			if h = reg.CallbackNotFound(); h == nil {
				h = opts.NotFound
			}
		}
		if h == nil {
			skip(c, "callback."+handlerName(key))
			return nil
		}
		return run(c, "callback."+handlerName(key), h, attrs...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: chain(handler)}
}

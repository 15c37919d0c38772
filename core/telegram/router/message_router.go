package router

import (
	tg "github.com/m3rciful/vaultbot/core/telegram"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// FSM is the part of a flow manager the message routes need.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// MessageOptions supplies handlers for messages outside any flow.
type MessageOptions struct {
	UnknownText tele.HandlerFunc
	// Media handles photos, videos, audio and documents.
	Media tele.HandlerFunc
}

// MessageRoutes routes text and media. A user inside a flow always goes to
// the FSM. Otherwise text may name a command alias without the slash, and
// anything left reaches the MessageOptions handlers.
func MessageRoutes(fsm FSM, reg *tg.Registry, opts MessageOptions) []tg.Route {
	inFlow := func(c tele.Context) bool {
		return fsm != nil && fsm.InProgress(tghelpers.SenderID(c))
	}

	text := func(c tele.Context) error {
		if inFlow(c) {
			return run(c, "fsm", fsm.ManagerHandler)
		}
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && !cmd.AdminOnly {
				return run(c, handlerName(key), cmd.Handler)
			}
		}
		if opts.UnknownText != nil {
			return run(c, "unknown_text", opts.UnknownText)
		}
		skip(c, "unknown_text")
		return nil
	}

	media := func(c tele.Context) error {
		switch {
		case inFlow(c):
			return run(c, "fsm_media", fsm.ManagerHandler)
		case opts.Media != nil:
			return run(c, "media", opts.Media)
		}
		skip(c, "unexpected_media")
		return nil
	}

	textH, mediaH := chain(text), chain(media)
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: textH},
		{Endpoint: tele.OnPhoto, Handler: mediaH},
		{Endpoint: tele.OnVideo, Handler: mediaH},
		{Endpoint: tele.OnAudio, Handler: mediaH},
		{Endpoint: tele.OnDocument, Handler: mediaH},
	}
}

// InlineQueryRoute wraps the inline query handler.
func InlineQueryRoute(h tele.HandlerFunc) tg.Route {
	return tg.Route{
		Endpoint: tele.OnQuery,
		Handler:  chain(func(c tele.Context) error { return run(c, "inline_query", h) }),
	}
}

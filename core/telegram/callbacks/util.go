package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// prefix marks callback data produced by tele.ReplyMarkup.Data.
const prefix = "\f"

// Sep separates the unique key and payload parts.
const Sep = "|"

// ParseCallbackData splits Telebot's \f<unique>|<payload> encoding.
// When telebot already routed the callback, Unique is set and Data holds the payload.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, prefix)
	key, payload, _ := strings.Cut(raw, Sep)
	return strings.TrimSpace(key), payload
}

// CallbackKey returns the unique key of the current callback.
func CallbackKey(c tele.Context) string {
	k, _ := ParseCallbackData(c.Callback())
	return k
}

// CallbackPayload returns everything after the first separator.
func CallbackPayload(c tele.Context) string {
	_, p := ParseCallbackData(c.Callback())
	return p
}

// Encode builds raw callback data the way telebot does, for tests and inline buttons
// created outside a ReplyMarkup.
func Encode(unique string, parts ...string) string {
	if len(parts) == 0 {
		return prefix + unique
	}
	return prefix + unique + Sep + strings.Join(parts, Sep)
}

package format

import (
	"html"
	"strings"
	"unicode/utf8"
)

// Escape makes text safe for Telegram's HTML parse mode.
func Escape(text string) string {
	return html.EscapeString(text)
}

// Bold wraps escaped text in <b>.
func Bold(text string) string { return "<b>" + Escape(text) + "</b>" }

// Code wraps escaped text in <code>.
func Code(text string) string { return "<code>" + Escape(text) + "</code>" }

// Italic wraps escaped text in <i>.
func Italic(text string) string { return "<i>" + Escape(text) + "</i>" }

// Truncate shortens s to at most max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string([]rune(s)[:max-1]) + "…"
}

// Lines joins non-empty lines with newlines.
func Lines(lines ...string) string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

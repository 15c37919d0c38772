// Package keyboard builds inline keyboards from plain button descriptions.
package keyboard

import (
	"slices"

	tele "gopkg.in/telebot.v4"
)

// InlineBtn is a callback button before it is bound to a markup. Unique is
// the callback key; Data becomes the payload parts.
type InlineBtn struct {
	Text   string
	Unique string
	Data   []string
}

const cancelText = "❌ Cancel"

// Btn is shorthand for an InlineBtn literal.
func Btn(text, unique string, data ...string) InlineBtn {
	return InlineBtn{Text: text, Unique: unique, Data: data}
}

// Row groups buttons into one keyboard row.
func Row(buttons ...InlineBtn) []InlineBtn { return buttons }

// CancelButton is a "❌ Cancel" button with key action and payload "cancel".
func CancelButton(action string) InlineBtn {
	return Btn(cancelText, action, "cancel")
}

// InlineButtonsRows renders rows into an inline markup, dropping empty rows.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		line := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			line = append(line, *markup.Data(b.Text, b.Unique, b.Data...).Inline())
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, line)
	}
	return markup
}

// InlineButtonsNPerRow lays buttons out n per row with extra rows below.
func InlineButtonsNPerRow(buttons []InlineBtn, n int, extra ...[]InlineBtn) *tele.ReplyMarkup {
	return InlineButtonsRows(append(ChunkButtons(buttons, n), extra...)...)
}

// ChunkButtons splits items into rows of at most n (at least 1).
func ChunkButtons[T any](items []T, n int) [][]T {
	return slices.Collect(slices.Chunk(items, max(n, 1)))
}

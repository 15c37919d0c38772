// Package ui holds small Telegram presentation building blocks shared by bots.
package ui

import tele "gopkg.in/telebot.v4"

// Fallbacks supplies the handlers for updates that match no command,
// callback key or active flow.
type Fallbacks interface {
	UnknownText() tele.HandlerFunc
	UnknownMedia() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// NewHTMLArticleResult builds an inline query result that posts html when
// chosen. description is the grey line under the title in the result list.
func NewHTMLArticleResult(id, title, description, html string) *tele.ArticleResult {
	r := &tele.ArticleResult{Title: title, Description: description, Text: html}
	r.SetResultID(id)
	r.SetParseMode(tele.ModeHTML)
	return r
}

package bot

import (
	"errors"
	"log/slog"

	"github.com/m3rciful/vaultbot/core/logger"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"
	"github.com/m3rciful/vaultbot/core/telegram/state"
	"github.com/m3rciful/vaultbot/core/telegram/ui"
	"github.com/m3rciful/vaultbot/internal/catalog"

	tele "gopkg.in/telebot.v4"
)

const inlineCacheSeconds = 10

func (b *Bot) handleSearchOpen(c tele.Context) error {
	b.flows.Start(tghelpers.SenderID(c), stateSearchGlobal, nil)
	return tghelpers.EditOrSendHTML(c, searchPromptText(nil), cancelMarkup())
}

func (b *Bot) handleSearchCategory(c tele.Context) error {
	cat, err := payloadCategory(c)
	if err != nil {
		return b.fail(c, err)
	}
	b.flows.Start(tghelpers.SenderID(c), stateSearchCategory, map[string]any{tempCategory: string(cat)})
	return tghelpers.EditOrSendHTML(c, searchPromptText(&cat), cancelMarkup())
}

// onSearch runs the keyword of both search flows. A bad keyword keeps the flow open.
func (b *Bot) onSearch(c tele.Context) error {
	uid := tghelpers.SenderID(c)
	var cat *catalog.Category
	if b.flows.GetState(uid) == stateSearchCategory {
		raw, _ := state.Temp[string](b.flows, uid, tempCategory)
		parsed, err := catalog.ParseCategory(raw)
		if err != nil {
			b.flows.Clear(uid)
			return b.fail(c, err)
		}
		cat = &parsed
	}

	keyword := c.Text()
	items, err := b.items.Search(tghelpers.BuildContext(c), keyword, cat)
	if errors.Is(err, catalog.ErrInvalidInput) {
		msg, _ := userMessage(err)
		return tghelpers.SendHTML(c, msg, cancelMarkup())
	}
	b.flows.Clear(uid)
	if err != nil {
		return b.fail(c, err)
	}
	if len(items) == 0 {
		return tghelpers.SendHTML(c, textNoResults, homeMarkup())
	}
	return tghelpers.SendHTML(c, searchResultsText(keyword, cat, len(items)), searchResultsMarkup(items, cat == nil))
}

// handleInlineQuery answers @bot queries with matching active items.
func (b *Bot) handleInlineQuery(c tele.Context) error {
	q := c.Query()
	if q == nil {
		return nil
	}
	items, err := b.items.Search(tghelpers.BuildContext(c), q.Text, nil)
	if err != nil && !errors.Is(err, catalog.ErrInvalidInput) {
		logger.Warn(tghelpers.BuildContext(c), "tg", "inline.search", slog.String("err", err.Error()))
	}
	results := make(tele.Results, 0, len(items))
	for _, it := range items {
		results = append(results, ui.NewHTMLArticleResult(
			idArg(it.ID), it.DisplayTitle(), it.Category.Label(), itemText(it),
		))
	}
	return c.Answer(&tele.QueryResponse{Results: results, CacheTime: inlineCacheSeconds})
}

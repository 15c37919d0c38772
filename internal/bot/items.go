package bot

import (
	"log/slog"

	"github.com/m3rciful/vaultbot/core/logger"
	"github.com/m3rciful/vaultbot/core/telegram/callbacks"
	"github.com/m3rciful/vaultbot/core/telegram/format"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"
	"github.com/m3rciful/vaultbot/internal/catalog"
	"github.com/m3rciful/vaultbot/internal/channel"

	tele "gopkg.in/telebot.v4"
)

func payloadCategory(c tele.Context) (catalog.Category, error) {
	return catalog.ParseCategory(callbacks.PayloadPart(c, 0))
}

func (b *Bot) handleCategoryOpen(c tele.Context) error {
	cat, err := payloadCategory(c)
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.EditOrSendHTML(c, categoryText(cat), categoryMarkup(cat))
}

// handleCategoryList shows one page of a category. "recent" is the first page.
func (b *Bot) handleCategoryList(c tele.Context) error {
	cat, err := payloadCategory(c)
	if err != nil {
		return b.fail(c, err)
	}
	number := 1
	if callbacks.PayloadPart(c, 1) != pageRecent {
		if number, err = callbacks.PayloadInt(c, 1, 1); err != nil {
			return badPayload(c)
		}
	}
	page, err := b.items.ListActive(tghelpers.BuildContext(c), cat, number)
	if err != nil {
		return b.fail(c, err)
	}
	if len(page.Items) == 0 {
		return tghelpers.EditOrSendHTML(c, emptyCategoryText(cat), categoryMarkup(cat))
	}
	text := listText(cat, page.Number)
	if callbacks.PayloadPart(c, 1) == pageRecent {
		text = "🆕 Recently added to " + categoryText(cat)
	}
	return tghelpers.EditOrSendHTML(c, text, listMarkup(cat, page))
}

func (b *Bot) handleItemView(c tele.Context) error {
	itemID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return badPayload(c)
	}
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.SenderID(c)
	it, err := b.items.Get(ctx, uid, itemID)
	if err != nil {
		return b.fail(c, err)
	}
	return b.showItem(c, it)
}

func (b *Bot) showItem(c tele.Context, it catalog.Item) error {
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.SenderID(c)
	canManage, err := b.items.CanManage(ctx, uid, it)
	if err != nil {
		return b.fail(c, err)
	}
	mod, err := b.users.IsModerator(ctx, uid)
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.EditOrSendHTML(c, itemText(it), itemMarkup(it, canManage, mod))
}

// handleItemGet delivers the stored file. The channel copy is forwarded when
// present so the original media type is kept.
func (b *Bot) handleItemGet(c tele.Context) error {
	itemID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return badPayload(c)
	}
	ctx := tghelpers.BuildContext(c)
	it, err := b.items.Get(ctx, tghelpers.SenderID(c), itemID)
	if err != nil {
		return b.fail(c, err)
	}
	if it.Trashed() {
		return alert(c, "♻️ Restore the item first.")
	}

	if it.ChannelMsgID != nil && b.channel != nil && c.Chat() != nil {
		err := b.channel.CopyTo(ctx, c.Chat().ID, int(*it.ChannelMsgID))
		if err == nil {
			return toast(c, "📥 Sent")
		}
		logger.Warn(ctx, "tg", "item.copy_failed",
			slog.Int64("item_id", it.ID),
			slog.String("err", logger.Redact(err.Error())),
		)
	}
	what := channel.Sendable(channel.KindFor(it.Category), it.FileID, "", format.Escape(format.Deref(it.Caption, "")))
	if err := tghelpers.SendMedia(c, what); err != nil {
		return err
	}
	return toast(c, "📥 Sent")
}

func (b *Bot) handleItemEdit(c tele.Context) error {
	itemID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return badPayload(c)
	}
	if _, err := b.manageableItem(c, itemID); err != nil {
		return b.fail(c, err)
	}
	return tghelpers.EditOrSendHTML(c, textEditChoose, editMarkup(itemID))
}

func (b *Bot) handleEditName(c tele.Context) error {
	return b.startEdit(c, stateEditName, textSendName)
}

func (b *Bot) handleEditCaption(c tele.Context) error {
	return b.startEdit(c, stateEditCaption, textSendCaption)
}

func (b *Bot) handleItemDelete(c tele.Context) error {
	itemID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return badPayload(c)
	}
	it, err := b.items.Trash(tghelpers.BuildContext(c), tghelpers.SenderID(c), itemID)
	if err != nil {
		return b.fail(c, err)
	}
	notify(c, "🗑️ Deleted")
	return tghelpers.EditOrSendHTML(c, trashedText(it), trashedMarkup(it.ID))
}

// manageableItem loads an item the sender may edit.
func (b *Bot) manageableItem(c tele.Context, itemID int64) (catalog.Item, error) {
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.SenderID(c)
	it, err := b.items.Get(ctx, uid, itemID)
	if err != nil {
		return catalog.Item{}, err
	}
	ok, err := b.items.CanManage(ctx, uid, it)
	if err != nil {
		return catalog.Item{}, err
	}
	if !ok {
		return catalog.Item{}, catalog.ErrForbidden
	}
	return it, nil
}

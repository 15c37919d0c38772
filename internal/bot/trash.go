package bot

import (
	"fmt"

	"github.com/m3rciful/vaultbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func (b *Bot) handleTrashList(c tele.Context) error {
	number, err := callbacks.PayloadInt(c, 0, 1)
	if err != nil {
		return badPayload(c)
	}
	return b.renderTrash(c, number)
}

func (b *Bot) renderTrash(c tele.Context, number int) error {
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.SenderID(c)
	page, err := b.items.ListTrash(ctx, uid, number)
	if err != nil {
		return b.fail(c, err)
	}
	if len(page.Items) == 0 {
		return tghelpers.EditOrSendHTML(c, textTrashEmpty, homeMarkup())
	}
	mod, err := b.users.IsModerator(ctx, uid)
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.EditOrSendHTML(c, trashText(page.Number), trashMarkup(page, mod))
}

func (b *Bot) handleTrashRestore(c tele.Context) error {
	itemID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return badPayload(c)
	}
	it, err := b.items.Restore(tghelpers.BuildContext(c), tghelpers.SenderID(c), itemID)
	if err != nil {
		return b.fail(c, err)
	}
	notify(c, "♻️ Restored")
	return b.showItem(c, it)
}

func (b *Bot) handleTrashPurge(c tele.Context) error {
	itemID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return badPayload(c)
	}
	if err := b.items.Purge(tghelpers.BuildContext(c), tghelpers.SenderID(c), itemID); err != nil {
		return b.fail(c, err)
	}
	notify(c, "❌ Deleted permanently")
	return b.renderTrash(c, 1)
}

func (b *Bot) handleTrashPurgeAll(c tele.Context) error {
	mod, err := b.isModerator(c)
	if err != nil {
		return b.fail(c, err)
	}
	if !mod {
		return alert(c, textNotAllowed)
	}
	return tghelpers.EditOrSendHTML(c, textPurgeConfirm, purgeConfirmMarkup())
}

func (b *Bot) handleTrashPurgeAllDo(c tele.Context) error {
	n, err := b.items.PurgeTrash(tghelpers.BuildContext(c), tghelpers.SenderID(c))
	if err != nil {
		return b.fail(c, err)
	}
	notify(c, "🧹 Done")
	return tghelpers.EditOrSendHTML(c, fmt.Sprintf("🧹 Trash emptied: %d item(s) deleted permanently.", n), homeMarkup())
}

package bot

import (
	"slices"
	"strconv"

	"github.com/m3rciful/vaultbot/core/telegram/format"
	kb "github.com/m3rciful/vaultbot/core/telegram/keyboard"
	"github.com/m3rciful/vaultbot/internal/catalog"

	tele "gopkg.in/telebot.v4"
)

const buttonTitleRunes = 40

func idArg(v int64) string { return strconv.FormatInt(v, 10) }
func pageArg(v int) string { return strconv.Itoa(v) }

var (
	btnHome   = kb.Btn("🏠 Home", keyMain)
	btnCancel = kb.CancelButton(keyFlowCancel)
)

func catBtn(c catalog.Category) kb.InlineBtn {
	return kb.Btn(c.Label(), keyCatOpen, string(c))
}

func mainMenuMarkup(moderator bool) *tele.ReplyMarkup {
	rows := [][]kb.InlineBtn{
		kb.Row(catBtn(catalog.CategoryFile), catBtn(catalog.CategoryImage)),
		kb.Row(catBtn(catalog.CategoryVideo), catBtn(catalog.CategoryAudio)),
		kb.Row(catBtn(catalog.CategoryApp)),
		kb.Row(kb.Btn("🔎 Search", keySearchOpen), kb.Btn("🗑️ Trash", keyTrashList, "1")),
		kb.Row(kb.Btn("👤 My account", keyProfile)),
	}
	if moderator {
		rows = append(rows, kb.Row(kb.Btn("🛠️ Admin panel", keyAdminOpen)))
	}
	return kb.InlineButtonsRows(rows...)
}

func startMarkup() *tele.ReplyMarkup {
	return kb.InlineButtonsRows(
		kb.Row(kb.Btn("✅ Register", keyRegister)),
		kb.Row(kb.Btn("🏠 Main menu", keyMain)),
	)
}

func homeMarkup() *tele.ReplyMarkup {
	return kb.InlineButtonsRows(kb.Row(btnHome))
}

func categoryMarkup(c catalog.Category) *tele.ReplyMarkup {
	cat := string(c)
	return kb.InlineButtonsRows(
		kb.Row(kb.Btn("📂 Browse", keyCatList, cat, "1")),
		kb.Row(kb.Btn("⬆️ Upload new", keyCatUpload, cat)),
		kb.Row(kb.Btn("🆕 Recently added", keyCatList, cat, pageRecent)),
		kb.Row(kb.Btn("🔎 Search in category", keySearchCat, cat)),
		kb.Row(kb.Btn("🔙 Back", keyMain), btnHome),
	)
}

func itemButton(prefix string, it catalog.Item) kb.InlineBtn {
	return kb.Btn(format.Truncate(prefix+it.DisplayTitle(), buttonTitleRunes), keyItemView, idArg(it.ID))
}

func navRow(key string, page catalog.Page[catalog.Item], args ...string) []kb.InlineBtn {
	var row []kb.InlineBtn
	args = slices.Clip(args)
	if page.HasPrev {
		row = append(row, kb.Btn("◀️ Prev", key, append(args, pageArg(page.Number-1))...))
	}
	if page.HasNext {
		row = append(row, kb.Btn("Next ▶️", key, append(args, pageArg(page.Number+1))...))
	}
	return row
}

func listMarkup(c catalog.Category, page catalog.Page[catalog.Item]) *tele.ReplyMarkup {
	buttons := make([]kb.InlineBtn, 0, len(page.Items))
	for _, it := range page.Items {
		buttons = append(buttons, itemButton("📦 ", it))
	}
	return kb.InlineButtonsNPerRow(buttons, 2,
		navRow(keyCatList, page, string(c)),
		kb.Row(kb.Btn("🔙 Back", keyCatOpen, string(c)), btnHome),
	)
}

// itemMarkup renders the actions available to the viewer of an item.
func itemMarkup(it catalog.Item, canManage, moderator bool) *tele.ReplyMarkup {
	itemID := idArg(it.ID)
	var rows [][]kb.InlineBtn
	if !it.Trashed() {
		rows = append(rows, kb.Row(kb.Btn("📥 Get file", keyItemGet, itemID)))
		if canManage {
			rows = append(rows, kb.Row(
				kb.Btn("✏️ Edit", keyItemEdit, itemID),
				kb.Btn("🗑️ Delete", keyItemDel, itemID),
			))
		}
		rows = append(rows, kb.Row(kb.Btn("🔙 Back", keyCatList, string(it.Category), "1"), btnHome))
		return kb.InlineButtonsRows(rows...)
	}
	if canManage {
		rows = append(rows, kb.Row(kb.Btn("♻️ Restore", keyTrashRestore, itemID)))
	}
	if moderator {
		rows = append(rows, kb.Row(kb.Btn("❌ Delete permanently", keyTrashPurge, itemID)))
	}
	rows = append(rows, kb.Row(kb.Btn("🔙 Trash", keyTrashList, "1"), btnHome))
	return kb.InlineButtonsRows(rows...)
}

func editMarkup(itemID int64) *tele.ReplyMarkup {
	v := idArg(itemID)
	return kb.InlineButtonsRows(
		kb.Row(kb.Btn("✏️ Edit name", keyEditName, v)),
		kb.Row(kb.Btn("📝 Edit caption", keyEditCaption, v)),
		kb.Row(kb.Btn("🔙 Back", keyItemView, v)),
	)
}

func trashedMarkup(itemID int64) *tele.ReplyMarkup {
	return kb.InlineButtonsRows(
		kb.Row(kb.Btn("♻️ Undo", keyTrashRestore, idArg(itemID))),
		kb.Row(kb.Btn("🗑️ Go to trash", keyTrashList, "1"), btnHome),
	)
}

func trashMarkup(page catalog.Page[catalog.Item], moderator bool) *tele.ReplyMarkup {
	buttons := make([]kb.InlineBtn, 0, len(page.Items))
	for _, it := range page.Items {
		buttons = append(buttons, itemButton("🗑️ ", it))
	}
	var purge []kb.InlineBtn
	if moderator {
		purge = kb.Row(kb.Btn("🧹 Empty trash", keyTrashPurgeAll))
	}
	return kb.InlineButtonsNPerRow(buttons, 2,
		navRow(keyTrashList, page),
		purge,
		kb.Row(btnHome),
	)
}

func purgeConfirmMarkup() *tele.ReplyMarkup {
	return kb.InlineButtonsRows(
		kb.Row(kb.Btn("⚠️ Confirm", keyTrashPurgeAllDo)),
		kb.Row(kb.Btn("Cancel", keyTrashList, "1")),
	)
}

func cancelMarkup() *tele.ReplyMarkup {
	return kb.InlineButtonsRows(kb.Row(btnCancel))
}

func searchResultsMarkup(items []catalog.Item, withCategory bool) *tele.ReplyMarkup {
	buttons := make([]kb.InlineBtn, 0, len(items))
	for _, it := range items {
		prefix := ""
		if withCategory {
			prefix = string(it.Category) + " | "
		}
		buttons = append(buttons, itemButton(prefix, it))
	}
	return kb.InlineButtonsNPerRow(buttons, 2, kb.Row(btnHome))
}

func adminMarkup() *tele.ReplyMarkup {
	return kb.InlineButtonsRows(
		kb.Row(kb.Btn("👥 Users", keyAdminUsers, "1")),
		kb.Row(kb.Btn("📊 Statistics", keyAdminStats)),
		kb.Row(kb.Btn("⚙️ Channel settings", keyAdminSettings)),
		kb.Row(kb.Btn("🔙 Back", keyMain)),
	)
}

func adminBackMarkup() *tele.ReplyMarkup {
	return kb.InlineButtonsRows(kb.Row(kb.Btn("🔙 Back", keyAdminOpen)))
}

// usersMarkup adds toggle buttons only when the viewer is the owner.
func usersMarkup(page catalog.Page[catalog.User], ownerID int64, viewerIsOwner bool) *tele.ReplyMarkup {
	var rows [][]kb.InlineBtn
	if viewerIsOwner {
		for _, u := range page.Items {
			if u.ID == ownerID {
				continue
			}
			label := "➕ Make moderator: "
			if u.IsModerator {
				label = "➖ Remove moderator: "
			}
			rows = append(rows, kb.Row(kb.Btn(label+idArg(u.ID), keyAdminToggle, idArg(u.ID), pageArg(page.Number))))
		}
	}
	var nav []kb.InlineBtn
	if page.HasPrev {
		nav = append(nav, kb.Btn("◀️", keyAdminUsers, pageArg(page.Number-1)))
	}
	if page.HasNext {
		nav = append(nav, kb.Btn("▶️", keyAdminUsers, pageArg(page.Number+1)))
	}
	rows = append(rows, nav, kb.Row(kb.Btn("🔙 Back", keyAdminOpen)))
	return kb.InlineButtonsRows(rows...)
}

package bot

import (
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"
	kb "github.com/m3rciful/vaultbot/core/telegram/keyboard"
	"github.com/m3rciful/vaultbot/internal/catalog"

	tele "gopkg.in/telebot.v4"
)

// handleStart records the user, drops any running flow and greets.
func (b *Bot) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.SenderID(c)
	if err := b.users.Ensure(ctx, uid, tghelpers.SenderName(c)); err != nil {
		return b.fail(c, err)
	}
	b.flows.Clear(uid)
	return tghelpers.SendHTML(c, greetingText(b.users.IsOwner(uid)), startMarkup())
}

func (b *Bot) handleMain(c tele.Context) error {
	b.flows.Clear(tghelpers.SenderID(c))
	mod, err := b.isModerator(c)
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.EditOrSendHTML(c, textMainMenu, mainMenuMarkup(mod))
}

func (b *Bot) handleRegister(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.SenderID(c)
	if err := b.users.Register(ctx, uid, tghelpers.SenderName(c)); err != nil {
		return b.fail(c, err)
	}
	mod, err := b.isModerator(c)
	if err != nil {
		return b.fail(c, err)
	}
	notify(c, "✅ Done")
	return tghelpers.EditOrSendHTML(c, textRegistered, mainMenuMarkup(mod))
}

func (b *Bot) handleProfile(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.SenderID(c)
	if err := b.users.Ensure(ctx, uid, tghelpers.SenderName(c)); err != nil {
		return b.fail(c, err)
	}
	u, err := tghelpers.CurrentUser[catalog.User](c, b.users)
	if err != nil {
		return b.fail(c, err)
	}
	role, err := b.users.Role(ctx, uid)
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.EditOrSendHTML(c, profileText(u, role), mainMenuMarkup(role.CanModerate()))
}

// handleCancel leaves the current flow (command form).
func (b *Bot) handleCancel(c tele.Context) error {
	uid := tghelpers.SenderID(c)
	if !b.flows.InProgress(uid) {
		return tghelpers.SendText(c, textNothingToDo)
	}
	b.flows.Clear(uid)
	mod, err := b.isModerator(c)
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.SendHTML(c, textCancelled, mainMenuMarkup(mod))
}

// handleFlowCancel leaves the current flow (button form).
func (b *Bot) handleFlowCancel(c tele.Context) error {
	b.flows.Clear(tghelpers.SenderID(c))
	mod, err := b.isModerator(c)
	if err != nil {
		return b.fail(c, err)
	}
	notify(c, textCancelled)
	return tghelpers.EditOrSendHTML(c, textMainMenu, mainMenuMarkup(mod))
}

// handleAdminCommand runs behind the moderator access check.
func (b *Bot) handleAdminCommand(c tele.Context) error {
	return tghelpers.SendHTML(c, textAdminPointer,
		kb.InlineButtonsRows(kb.Row(kb.Btn("🛠️ Admin panel", keyAdminOpen))))
}

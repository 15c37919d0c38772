package bot

import (
	"log/slog"

	"github.com/m3rciful/vaultbot/core/logger"
	"github.com/m3rciful/vaultbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"
	"github.com/m3rciful/vaultbot/internal/catalog"

	tele "gopkg.in/telebot.v4"
)

// requireModerator answers non-moderators and reports whether to go on.
func (b *Bot) requireModerator(c tele.Context) (bool, error) {
	mod, err := b.isModerator(c)
	if err != nil {
		return false, b.fail(c, err)
	}
	if !mod {
		return false, alert(c, textModsOnly)
	}
	return true, nil
}

func (b *Bot) handleAdminOpen(c tele.Context) error {
	if ok, err := b.requireModerator(c); !ok {
		return err
	}
	return tghelpers.EditOrSendHTML(c, textAdminPanel, adminMarkup())
}

func (b *Bot) handleAdminUsers(c tele.Context) error {
	number, err := callbacks.PayloadInt(c, 0, 1)
	if err != nil {
		return badPayload(c)
	}
	return b.renderUsers(c, number)
}

func (b *Bot) renderUsers(c tele.Context, number int) error {
	uid := tghelpers.SenderID(c)
	page, err := b.users.List(tghelpers.BuildContext(c), uid, number)
	if err != nil {
		return b.fail(c, err)
	}
	if len(page.Items) == 0 {
		return tghelpers.EditOrSendHTML(c, textNoUsers, adminBackMarkup())
	}
	return tghelpers.EditOrSendHTML(c,
		usersText(page, b.users.OwnerID()),
		usersMarkup(page, b.users.OwnerID(), b.users.IsOwner(uid)),
	)
}

// handleAdminToggle flips the moderator flag of a user and redraws the page
// the button was pressed on.
func (b *Bot) handleAdminToggle(c tele.Context) error {
	target, number, err := callbacks.PayloadTwoInt64(c)
	if err != nil {
		return badPayload(c)
	}
	isMod, err := b.users.ToggleModerator(tghelpers.BuildContext(c), tghelpers.SenderID(c), target)
	if err != nil {
		return b.fail(c, err)
	}
	msg := "➖ Moderator removed."
	if isMod {
		msg = "➕ Moderator added."
	}
	notify(c, msg)
	return b.renderUsers(c, catalog.ClampPage(int(number)))
}

func (b *Bot) handleAdminStats(c tele.Context) error {
	st, err := b.items.Stats(tghelpers.BuildContext(c), tghelpers.SenderID(c))
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.EditOrSendHTML(c, statsText(st), adminBackMarkup())
}

func (b *Bot) handleAdminSettings(c tele.Context) error {
	if ok, err := b.requireModerator(c); !ok {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	title, err := b.channel.Describe(ctx)
	if err != nil {
		logger.Warn(ctx, "tg", "channel.describe_failed", slog.String("err", err.Error()))
		title = ""
	}
	return tghelpers.EditOrSendHTML(c, settingsText(b.channel.Ref().String(), title), adminBackMarkup())
}

// Package bot implements the vault catalog conversation: menus, item views,
// uploads, search, trash and the admin panel.
package bot

import (
	"context"
	"errors"

	tg "github.com/m3rciful/vaultbot/core/telegram"
	"github.com/m3rciful/vaultbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"
	"github.com/m3rciful/vaultbot/core/telegram/middleware"
	"github.com/m3rciful/vaultbot/core/telegram/router"
	"github.com/m3rciful/vaultbot/core/telegram/state"
	"github.com/m3rciful/vaultbot/core/telegram/ui"
	"github.com/m3rciful/vaultbot/internal/catalog"
	"github.com/m3rciful/vaultbot/internal/channel"

	tele "gopkg.in/telebot.v4"
)

// Channel is the storage channel as seen by handlers.
type Channel interface {
	Ref() channel.ChatRef
	CopyTo(ctx context.Context, chatID int64, messageID int) error
	Describe(ctx context.Context) (string, error)
}

// Deps wires the bot to its services.
type Deps struct {
	Items   *catalog.ItemService
	Users   *catalog.UserService
	Channel Channel
}

// Bot owns the handlers and the flow state of every user.
type Bot struct {
	items   *catalog.ItemService
	users   *catalog.UserService
	channel Channel
	flows   state.Manager
}

var _ ui.Fallbacks = (*Bot)(nil)

// New builds the bot with an in-memory flow manager.
func New(d Deps) *Bot {
	b := &Bot{items: d.Items, users: d.Users, channel: d.Channel}
	b.flows = state.NewMemoryManager(b.flowTable(), state.WithWrongInput(b.wrongInput))
	return b
}

// Flows exposes the flow manager.
func (b *Bot) Flows() state.Manager { return b.flows }

// Register adds commands and callback handlers to reg.
func (b *Bot) Register(reg *tg.Registry) error {
	errs := []error{
		reg.RegisterCommand("/start", commands.Command{
			Handler:     b.handleStart,
			Description: "Open the vault",
		}),
		reg.RegisterCommand("/cancel", commands.Command{
			Handler:     b.handleCancel,
			Description: "Leave the current step",
		}),
		reg.RegisterCommand("/admin", commands.Command{
			Handler:     b.handleAdminCommand,
			Description: "Admin panel",
			AdminOnly:   true,
		}),
		reg.RegisterCallbacks(b.callbackHandlers()),
	}
	reg.SetCallbackNotFound(b.UnknownCallback())
	return errors.Join(errs...)
}

func (b *Bot) callbackHandlers() map[string]tele.HandlerFunc {
	return map[string]tele.HandlerFunc{
		keyMain:     b.handleMain,
		keyRegister: b.handleRegister,
		keyProfile:  b.handleProfile,

		keyCatOpen:   b.handleCategoryOpen,
		keyCatList:   b.handleCategoryList,
		keyCatUpload: b.handleUploadStart,

		keyItemView:    b.handleItemView,
		keyItemGet:     b.handleItemGet,
		keyItemEdit:    b.handleItemEdit,
		keyEditName:    b.handleEditName,
		keyEditCaption: b.handleEditCaption,
		keyItemDel:     b.handleItemDelete,

		keyTrashList:       b.handleTrashList,
		keyTrashRestore:    b.handleTrashRestore,
		keyTrashPurge:      b.handleTrashPurge,
		keyTrashPurgeAll:   b.handleTrashPurgeAll,
		keyTrashPurgeAllDo: b.handleTrashPurgeAllDo,

		keySearchOpen: b.handleSearchOpen,
		keySearchCat:  b.handleSearchCategory,

		keyAdminOpen:     b.handleAdminOpen,
		keyAdminUsers:    b.handleAdminUsers,
		keyAdminToggle:   b.handleAdminToggle,
		keyAdminStats:    b.handleAdminStats,
		keyAdminSettings: b.handleAdminSettings,

		keyFlowCancel: b.handleFlowCancel,
	}
}

// Routes returns every route the bot serves. Register must run first.
func (b *Bot) Routes(reg *tg.Registry) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		Access: middleware.AccessOptions{
			Allow:    b.allowModerator,
			OnReject: b.rejectNonModerator,
		},
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{NotFound: b.UnknownCallback()}))
	routes = append(routes, router.MessageRoutes(b.flows, reg, router.MessageOptions{
		UnknownText: b.UnknownText(),
		Media:       b.UnknownMedia(),
	})...)
	routes = append(routes, router.InlineQueryRoute(b.handleInlineQuery))
	return routes
}

// UnknownText answers free text outside a flow with the main menu.
func (b *Bot) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		mod, err := b.isModerator(c)
		if err != nil {
			return b.fail(c, err)
		}
		return tghelpers.SendHTML(c, textUnknownInput, mainMenuMarkup(mod))
	}
}

// UnknownMedia treats media outside a flow as a quick upload.
func (b *Bot) UnknownMedia() tele.HandlerFunc {
	return b.handleQuickUpload
}

// UnknownCallback answers buttons from outdated menus.
func (b *Bot) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return alert(c, textUnknownAction)
	}
}

// OnRateLimited is the reply for users hitting the rate limit.
func (b *Bot) OnRateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return toast(c, textRateLimited)
	}
	return nil
}

func (b *Bot) allowModerator(c tele.Context) (bool, error) {
	return b.isModerator(c)
}

func (b *Bot) rejectNonModerator(c tele.Context) error {
	return tghelpers.SendText(c, textModsOnly)
}

func (b *Bot) isModerator(c tele.Context) (bool, error) {
	return b.users.IsModerator(tghelpers.BuildContext(c), tghelpers.SenderID(c))
}

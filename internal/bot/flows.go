package bot

import (
	"errors"

	"github.com/m3rciful/vaultbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"
	"github.com/m3rciful/vaultbot/core/telegram/state"
	"github.com/m3rciful/vaultbot/internal/catalog"

	tele "gopkg.in/telebot.v4"
)

// Wait-flow states.
const (
	stateUpload         state.State = "upload.wait"
	stateEditName       state.State = "edit.name"
	stateEditCaption    state.State = "edit.caption"
	stateSearchGlobal   state.State = "search.global"
	stateSearchCategory state.State = "search.category"
)

// Flow temp data keys.
const (
	tempCategory = "category"
	tempItemID   = "item_id"
)

// flowTable lists which input each state consumes. Anything else gets the
// state's hint and the flow stays where it is.
func (b *Bot) flowTable() *state.Table {
	t := state.NewTable(
		state.Transition{From: stateUpload, Input: state.InputMedia, Handler: b.onUploadMedia},
		state.Transition{From: stateEditName, Input: state.InputText, Handler: b.onEditName},
		state.Transition{From: stateEditCaption, Input: state.InputText, Handler: b.onEditCaption},
		state.Transition{From: stateSearchGlobal, Input: state.InputText, Handler: b.onSearch},
		state.Transition{From: stateSearchCategory, Input: state.InputText, Handler: b.onSearch},
	)
	t.SetHint(stateUpload, hintUpload)
	for _, st := range []state.State{stateEditName, stateEditCaption, stateSearchGlobal, stateSearchCategory} {
		t.SetHint(st, hintText)
	}
	return t
}

func (b *Bot) wrongInput(c tele.Context, _ state.State, hint string) error {
	if hint == "" {
		return nil
	}
	return tghelpers.SendHTML(c, hint, cancelMarkup())
}

// startEdit opens an edit flow for the item in the callback payload.
func (b *Bot) startEdit(c tele.Context, st state.State, prompt string) error {
	itemID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return badPayload(c)
	}
	if _, err := b.manageableItem(c, itemID); err != nil {
		return b.fail(c, err)
	}
	b.flows.Start(tghelpers.SenderID(c), st, map[string]any{tempItemID: itemID})
	return tghelpers.EditOrSendHTML(c, prompt, cancelMarkup())
}

func (b *Bot) onEditName(c tele.Context) error {
	return b.finishEdit(c, func(uid, itemID int64) (catalog.Item, error) {
		return b.items.Rename(tghelpers.BuildContext(c), uid, itemID, c.Text())
	}, "✅ Name updated.")
}

func (b *Bot) onEditCaption(c tele.Context) error {
	return b.finishEdit(c, func(uid, itemID int64) (catalog.Item, error) {
		return b.items.SetCaption(tghelpers.BuildContext(c), uid, itemID, c.Text())
	}, "✅ Caption updated.")
}

// finishEdit applies an edit. Invalid text keeps the flow open for another try.
func (b *Bot) finishEdit(c tele.Context, apply func(uid, itemID int64) (catalog.Item, error), done string) error {
	uid := tghelpers.SenderID(c)
	itemID, ok := state.Temp[int64](b.flows, uid, tempItemID)
	if !ok {
		b.flows.Clear(uid)
		return b.fail(c, catalog.ErrNotFound)
	}
	it, err := apply(uid, itemID)
	if errors.Is(err, catalog.ErrInvalidInput) {
		msg, _ := userMessage(err)
		return tghelpers.SendHTML(c, msg, cancelMarkup())
	}
	b.flows.Clear(uid)
	if err != nil {
		return b.fail(c, err)
	}
	if err := tghelpers.SendText(c, done); err != nil {
		return err
	}
	return b.showItem(c, it)
}

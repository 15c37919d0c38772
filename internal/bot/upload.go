package bot

import (
	"errors"
	"strings"

	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"
	"github.com/m3rciful/vaultbot/core/telegram/state"
	"github.com/m3rciful/vaultbot/internal/catalog"

	tele "gopkg.in/telebot.v4"
)

// AttachmentFromMessage extracts the uploadable payload of a message.
func AttachmentFromMessage(m *tele.Message) (catalog.Attachment, error) {
	if m == nil {
		return catalog.Attachment{}, catalog.ErrUnsupportedMedia
	}
	a := catalog.Attachment{Caption: strings.TrimSpace(m.Caption)}
	switch {
	case m.Photo != nil:
		a.Kind = catalog.MediaPhoto
		a.FileID = m.Photo.FileID
	case m.Video != nil:
		a.Kind = catalog.MediaVideo
		a.FileID = m.Video.FileID
		a.FileName = m.Video.FileName
		a.MIME = m.Video.MIME
		a.ThumbID = thumbID(m.Video.Thumbnail)
	case m.Audio != nil:
		a.Kind = catalog.MediaAudio
		a.FileID = m.Audio.FileID
		a.FileName = m.Audio.FileName
		if a.FileName == "" {
			a.FileName = m.Audio.Title
		}
		a.MIME = m.Audio.MIME
		a.ThumbID = thumbID(m.Audio.Thumbnail)
	case m.Document != nil:
		a.Kind = catalog.MediaDocument
		a.FileID = m.Document.FileID
		a.FileName = m.Document.FileName
		a.MIME = m.Document.MIME
		a.ThumbID = thumbID(m.Document.Thumbnail)
	default:
		return catalog.Attachment{}, catalog.ErrUnsupportedMedia
	}
	return a, nil
}

func thumbID(p *tele.Photo) string {
	if p == nil {
		return ""
	}
	return p.FileID
}

// handleUploadStart opens the upload flow for a category. Registered users only.
func (b *Bot) handleUploadStart(c tele.Context) error {
	cat, err := payloadCategory(c)
	if err != nil {
		return b.fail(c, err)
	}
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.SenderID(c)
	registered, err := b.users.IsRegistered(ctx, uid)
	if err != nil {
		return b.fail(c, err)
	}
	if !registered {
		return alert(c, textRegisterFirst)
	}
	b.flows.Start(uid, stateUpload, map[string]any{tempCategory: string(cat)})
	return tghelpers.EditOrSendHTML(c, uploadPromptText(cat), cancelMarkup())
}

// onUploadMedia consumes the media of the upload flow. A category mismatch
// keeps the flow waiting for a matching item.
func (b *Bot) onUploadMedia(c tele.Context) error {
	uid := tghelpers.SenderID(c)
	raw, _ := state.Temp[string](b.flows, uid, tempCategory)
	cat, err := catalog.ParseCategory(raw)
	if err != nil {
		b.flows.Clear(uid)
		return b.fail(c, err)
	}
	a, err := AttachmentFromMessage(c.Message())
	if err != nil {
		return b.fail(c, err)
	}

	it, err := b.items.Upload(tghelpers.BuildContext(c), uid, &cat, a)
	var mismatch *catalog.MismatchError
	switch {
	case errors.As(err, &mismatch):
		return tghelpers.SendHTML(c, mismatchText(mismatch), cancelMarkup())
	case errors.Is(err, catalog.ErrUnsupportedMedia):
		return b.fail(c, err)
	case err != nil:
		b.flows.Clear(uid)
		return b.fail(c, err)
	}
	b.flows.Clear(uid)
	return b.sendUploaded(c, it)
}

// handleQuickUpload stores media sent outside a flow under its detected category.
func (b *Bot) handleQuickUpload(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	uid := tghelpers.SenderID(c)
	if err := b.users.Ensure(ctx, uid, tghelpers.SenderName(c)); err != nil {
		return b.fail(c, err)
	}
	a, err := AttachmentFromMessage(c.Message())
	if err != nil {
		return b.fail(c, err)
	}
	it, err := b.items.Upload(ctx, uid, nil, a)
	if err != nil {
		return b.fail(c, err)
	}
	return b.sendUploaded(c, it)
}

func (b *Bot) sendUploaded(c tele.Context, it catalog.Item) error {
	mod, err := b.isModerator(c)
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.SendHTML(c, uploadedText(it), mainMenuMarkup(mod))
}

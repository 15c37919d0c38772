package bot

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/vaultbot/core/logger"
	"github.com/m3rciful/vaultbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"
	"github.com/m3rciful/vaultbot/internal/catalog"

	tele "gopkg.in/telebot.v4"
)

// userMessage maps an error to the text shown to the user. known is false for
// errors that are not part of the catalog contract.
func userMessage(err error) (msg string, known bool) {
	var mismatch *catalog.MismatchError
	var input *catalog.InputError
	switch {
	case errors.As(err, &mismatch):
		return fmt.Sprintf("⚠️ This looks like %s, not %s.", mismatch.Detected.Label(), mismatch.Target.Label()), true
	case errors.As(err, &input):
		return fmt.Sprintf("⚠️ Invalid %s: %s.", input.Field, input.Reason), true
	case errors.Is(err, catalog.ErrNotFound):
		return "Not found. It may have been deleted.", true
	case errors.Is(err, catalog.ErrForbidden):
		return textNotAllowed, true
	case errors.Is(err, catalog.ErrNotRegistered):
		return textRegisterFirst, true
	case errors.Is(err, catalog.ErrUnknownCategory):
		return "Unknown category.", true
	case errors.Is(err, catalog.ErrUnsupportedMedia):
		return "⚠️ I cannot read this type. Send a photo, video, audio file or document.", true
	}
	return textGenericFailure, false
}

// fail reports err to the user. Catalog errors end the update normally;
// anything else is returned so the handler summary logs it.
func (b *Bot) fail(c tele.Context, err error) error {
	msg, known := userMessage(err)
	var sendErr error
	if c.Callback() != nil {
		sendErr = callbacks.Alert(c, msg)
	} else {
		sendErr = tghelpers.SendText(c, msg)
	}
	if !known {
		return err
	}
	return sendErr
}

func alert(c tele.Context, text string) error {
	if c.Callback() != nil {
		return callbacks.Alert(c, text)
	}
	return tghelpers.SendText(c, text)
}

func toast(c tele.Context, text string) error {
	if c.Callback() != nil {
		return callbacks.Toast(c, text)
	}
	return nil
}

// notify toasts text ahead of a screen update. A failed answer only loses
// the toast, so it is logged and the update continues.
func notify(c tele.Context, text string) {
	if err := toast(c, text); err != nil {
		logger.Warn(tghelpers.BuildContext(c), "tg", "callback.answer_failed",
			slog.String("text", text),
			slog.String("err", logger.Redact(err.Error())),
		)
	}
}

// badPayload answers callbacks whose data cannot be parsed.
func badPayload(c tele.Context) error {
	return alert(c, textUnknownAction)
}

package callbacks

import tele "gopkg.in/telebot.v4"

const answeredKey = "cb_answered"

// Respond answers the callback query once; later calls are no-ops.
func Respond(c tele.Context, resp ...*tele.CallbackResponse) error {
	if c.Callback() == nil || Answered(c) {
		return nil
	}
	c.Set(answeredKey, true)
	return c.Respond(resp...)
}

// Toast answers the callback with a short notification.
func Toast(c tele.Context, text string) error {
	return Respond(c, &tele.CallbackResponse{Text: text})
}

// Alert answers the callback with a modal alert.
func Alert(c tele.Context, text string) error {
	return Respond(c, &tele.CallbackResponse{Text: text, ShowAlert: true})
}

// Answered reports whether the callback was already answered.
func Answered(c tele.Context) bool {
	v, _ := c.Get(answeredKey).(bool)
	return v
}

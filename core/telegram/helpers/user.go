package helpers

import (
	"context"
	"errors"

	tele "gopkg.in/telebot.v4"
)

const currentUserKey = "current_user"

// ErrNoSender is returned for updates without a user, such as channel posts.
var ErrNoSender = errors.New("update has no sender")

// UserLookup loads the domain user behind a Telegram id.
type UserLookup[T any] interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (T, error)
}

// CurrentUser returns the sender's domain user. The result is cached on c,
// so repeated calls within one update hit the store once.
func CurrentUser[T any](c tele.Context, users UserLookup[T]) (T, error) {
	if cached, ok := c.Get(currentUserKey).(T); ok {
		return cached, nil
	}
	var zero T
	id := SenderID(c)
	if id == 0 {
		return zero, ErrNoSender
	}
	u, err := users.GetUserByTelegramID(BuildContext(c), id)
	if err != nil {
		return zero, err
	}
	c.Set(currentUserKey, u)
	return u, nil
}

package state

import tele "gopkg.in/telebot.v4"

// State names one step of a wait-flow.
type State string

// StateIdle means the user is not inside any flow.
const StateIdle State = "idle"

// Input classifies the message a flow receives.
type Input string

const (
	InputText  Input = "text"
	InputMedia Input = "media"
)

// Session is a user's flow state plus the values the flow collected.
type Session struct {
	State    State
	TempData map[string]any
}

// Manager keeps sessions and feeds messages to the flow a user is in.
type Manager interface {
	Get(userID int64) Session
	// Start replaces any running flow with st and a copy of temp.
	Start(userID int64, st State, temp map[string]any)
	GetTemp(userID int64, key string) (any, bool)
	GetState(userID int64) State
	Clear(userID int64)

	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// Temp returns the session value under key when it holds a T.
func Temp[T any](m Manager, userID int64, key string) (T, bool) {
	v, _ := m.GetTemp(userID, key)
	t, ok := v.(T)
	return t, ok
}

// InputOf reports whether the update carries media or plain text.
func InputOf(c tele.Context) Input {
	m := c.Message()
	if m == nil {
		return InputText
	}
	switch {
	case m.Photo != nil, m.Video != nil, m.Audio != nil, m.Document != nil:
		return InputMedia
	}
	return InputText
}

package state

import (
	"log/slog"
	"maps"
	"sync"

	"github.com/m3rciful/vaultbot/core/logger"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// WrongInputFunc answers a message of the wrong kind for st.
type WrongInputFunc func(c tele.Context, st State, hint string) error

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]Session
	table    *Table
	onWrong  WrongInputFunc
}

// Option customises a memory manager.
type Option func(*memoryManager)

// WithWrongInput replaces the default wrong-input reply, which sends the
// state's hint as plain text. The flow keeps its state either way.
func WithWrongInput(fn WrongInputFunc) Option {
	return func(m *memoryManager) {
		if fn != nil {
			m.onWrong = fn
		}
	}
}

func sendHint(c tele.Context, _ State, hint string) error {
	if hint == "" {
		return nil
	}
	return c.Send(hint)
}

// NewMemoryManager keeps sessions in process memory; they do not survive a
// restart. A nil table accepts no input at all.
func NewMemoryManager(table *Table, opts ...Option) Manager {
	m := &memoryManager{
		sessions: map[int64]Session{},
		table:    table,
		onWrong:  sendHint,
	}
	if m.table == nil {
		m.table = NewTable()
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *memoryManager) session(userID int64) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Get returns a copy of the user's session, or an idle one.
func (m *memoryManager) Get(userID int64) Session {
	s, ok := m.session(userID)
	if !ok {
		return Session{State: StateIdle, TempData: map[string]any{}}
	}
	return Session{State: s.State, TempData: maps.Clone(s.TempData)}
}

func (m *memoryManager) Start(userID int64, st State, temp map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st == StateIdle {
		delete(m.sessions, userID)
		return
	}
	data := make(map[string]any, len(temp))
	maps.Copy(data, temp)
	m.sessions[userID] = Session{State: st, TempData: data}
}

func (m *memoryManager) GetTemp(userID int64, key string) (any, bool) {
	s, _ := m.session(userID)
	v, ok := s.TempData[key]
	return v, ok
}

func (m *memoryManager) GetState(userID int64) State {
	if s, ok := m.session(userID); ok {
		return s.State
	}
	return StateIdle
}

func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

// InProgress is true while the user sits in a state the table handles.
func (m *memoryManager) InProgress(userID int64) bool {
	st := m.GetState(userID)
	return st != StateIdle && m.table.Knows(st)
}

// ManagerHandler hands the message to the transition for the user's state
// and input kind. Without one the wrong-input reply is sent.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	userID := tghelpers.SenderID(c)
	st, in := m.GetState(userID), InputOf(c)
	h, ok := m.table.Lookup(st, in)

	logger.Debug(tghelpers.BuildContext(c), "tg", "fsm.dispatch",
		slog.String("status", "ok"),
		slog.String("state", string(st)),
		slog.String("input", string(in)),
		slog.Bool("matched", ok),
	)
	if !ok {
		return m.onWrong(c, st, m.table.Hint(st))
	}
	return h(c)
}

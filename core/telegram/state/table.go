package state

import (
	"maps"
	"slices"

	tele "gopkg.in/telebot.v4"
)

// Transition binds a state and an input kind to the handler that consumes it.
type Transition struct {
	From    State
	Input   Input
	Handler tele.HandlerFunc
}

// Table is the explicit transition table of a bot's wait-flows.
type Table struct {
	rows  map[State]map[Input]tele.HandlerFunc
	hints map[State]string
}

// NewTable builds a table from transitions. Later rows override earlier ones.
func NewTable(transitions ...Transition) *Table {
	t := &Table{
		rows:  make(map[State]map[Input]tele.HandlerFunc),
		hints: make(map[State]string),
	}
	for _, tr := range transitions {
		t.Add(tr)
	}
	return t
}

// Add registers a transition. Rows without a handler are ignored.
func (t *Table) Add(tr Transition) {
	if tr.Handler == nil || tr.From == "" || tr.From == StateIdle {
		return
	}
	if t.rows[tr.From] == nil {
		t.rows[tr.From] = make(map[Input]tele.HandlerFunc)
	}
	t.rows[tr.From][tr.Input] = tr.Handler
}

// SetHint sets the reply sent when a state receives the wrong kind of input.
func (t *Table) SetHint(st State, hint string) {
	t.hints[st] = hint
}

// Hint returns the wrong-input reply for st.
func (t *Table) Hint(st State) string {
	return t.hints[st]
}

// Lookup returns the handler for st and in.
func (t *Table) Lookup(st State, in Input) (tele.HandlerFunc, bool) {
	h, ok := t.rows[st][in]
	return h, ok
}

// Knows reports whether st has any transition.
func (t *Table) Knows(st State) bool {
	return len(t.rows[st]) > 0
}

// States lists the registered states, sorted.
func (t *Table) States() []State {
	return slices.Sorted(maps.Keys(t.rows))
}

// Package state provides per-user conversation state for Telegram bots: an
// in-memory session store plus a transition table that maps (state, input kind)
// to the handler expected to consume the next message.
package state

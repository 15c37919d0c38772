// Package commands describes slash commands independently of routing.
package commands

import tele "gopkg.in/telebot.v4"

// Command is one slash command as the registry stores it.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands pass the router's access check and stay out of
	// the published command menu.
	AdminOnly bool
	// Hidden keeps a public command out of the menu.
	Hidden bool
	// Aliases are extra names, with or without the slash, that also reach
	// Handler. Text without a slash matches non-admin aliases.
	Aliases []string
}

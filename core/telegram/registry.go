package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/m3rciful/vaultbot/core/logger"
	"github.com/m3rciful/vaultbot/core/telegram/callbacks"
	"github.com/m3rciful/vaultbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

var errInvalidRegistration = errors.New("invalid registration")

// Registry maps slash commands and callback keys to handlers. Commands are
// keyed with their leading slash; aliases resolve to the canonical name.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]commands.Command
	aliases   map[string]string
	callbacks map[string]tele.HandlerFunc
	notFound  tele.HandlerFunc
}

// NewRegistry returns an empty registry whose unknown-callback handler
// answers with a short toast.
func NewRegistry() *Registry {
	return &Registry{
		commands:  map[string]commands.Command{},
		aliases:   map[string]string{},
		callbacks: map[string]tele.HandlerFunc{},
		notFound: func(c tele.Context) error {
			return callbacks.Toast(c, "Unsupported action")
		},
	}
}

func slashed(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + name
}

func wireWarn(event string, attrs ...slog.Attr) {
	logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, event, attrs...)
}

// RegisterCommand adds cmd under name, which must start with a slash.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	if !strings.HasPrefix(name, "/") || len(name) == 1 || cmd.Handler == nil || cmd.Description == "" {
		wireWarn("register.command.skip", slog.String("name", name))
		return fmt.Errorf("command %q: %w", name, errInvalidRegistration)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.commands[name]; dup {
		wireWarn("register.command.duplicate", slog.String("name", name))
		return fmt.Errorf("command %q already registered", name)
	}
	for _, alias := range cmd.Aliases {
		if owner, taken := r.aliases[slashed(alias)]; taken {
			return fmt.Errorf("alias %q of %s already used by %s", alias, name, owner)
		}
	}
	r.commands[name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[slashed(alias)] = name
	}
	return nil
}

// Commands returns a snapshot of the registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.commands)
}

// ListCommands returns menu entries (names without the slash) sorted by name.
// With visibleOnly set, hidden and admin-only commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []tele.Command
	for name, cmd := range r.commands {
		if visibleOnly && (cmd.Hidden || cmd.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: cmd.Description})
	}
	slices.SortFunc(list, func(a, b tele.Command) int { return strings.Compare(a.Text, b.Text) })
	return list
}

// LookupCommand resolves a command or alias, with or without the slash.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	name = slashed(strings.TrimSpace(name))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	cmd, ok := r.commands[name]
	if !ok {
		return "", commands.Command{}, false
	}
	return name, cmd, true
}

// RegisterCallback binds a callback key to handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		wireWarn("register.callback.skip", slog.String("cb_key", key))
		return fmt.Errorf("callback %q: %w", key, errInvalidRegistration)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.callbacks[key]; dup {
		wireWarn("register.callback.duplicate", slog.String("cb_key", key))
		return fmt.Errorf("callback %q already registered", key)
	}
	r.callbacks[key] = handler
	return nil
}

// RegisterCallbacks registers handlers in key order and joins the failures.
func (r *Registry) RegisterCallbacks(handlers map[string]tele.HandlerFunc) error {
	var errs []error
	for _, key := range slices.Sorted(maps.Keys(handlers)) {
		errs = append(errs, r.RegisterCallback(key, handlers[key]))
	}
	return errors.Join(errs...)
}

// GetCallback returns the handler bound to key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the registered keys, sorted.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.callbacks))
}

// SetCallbackNotFound replaces the handler used for unknown callback keys.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.notFound = h
	r.mu.Unlock()
}

func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notFound
}

// publishCommands pushes the visible commands to the Telegram command menu.
func publishCommands(bot *tele.Bot, reg *Registry) {
	visible := reg.ListCommands(true)
	if len(visible) == 0 {
		return
	}
	ctx := context.Background()
	if err := bot.SetCommands(visible); err != nil {
		logger.TWire.LogAttrs(ctx, slog.LevelError, "register.commands.set_failed",
			slog.String("err", logger.Redact(err.Error())),
		)
		return
	}
	logger.TWire.LogAttrs(ctx, slog.LevelDebug, "register.commands.set", slog.Int("count", len(visible)))
}

package router

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m3rciful/vaultbot/core/logger"
	tg "github.com/m3rciful/vaultbot/core/telegram"
	"github.com/m3rciful/vaultbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures CommandRoutes.
type CommandRouteOptions struct {
	// Access guards commands flagged AdminOnly.
	Access middleware.AccessOptions
}

// CommandRoutes returns one route per command and per alias.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	restricted := middleware.RestrictedMiddleware(opts.Access)
	var routes []tg.Route
	for name, cmd := range reg.Commands() {
		inner := cmd.Handler
		if cmd.AdminOnly {
			inner = restricted(inner)
		}
		label := handlerName(name)
		h := chain(func(c tele.Context) error { return run(c, label, inner) })

		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
		for _, alias := range cmd.Aliases {
			if alias != "" {
				routes = append(routes, tg.Route{Endpoint: "/" + strings.TrimLeft(alias, "/"), Handler: h})
			}
		}
	}

	logger.TWire.LogAttrs(context.Background(), slog.LevelInfo, "tg.wire",
		slog.String("event", "complete"),
		slog.Int("routes", len(routes)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}


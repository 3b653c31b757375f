package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/whoisbot/core/logger"
	tg "github.com/m3rciful/whoisbot/core/telegram"
)

// CommandRoutes binds every registered command and its aliases.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		name := "command." + normalizeHandlerName(cmd)
		h := def.Handler
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: summarized(name, h)})
		for _, alias := range def.Aliases {
			routes = append(routes, tg.Route{Endpoint: "/" + normalizeHandlerName(alias), Handler: summarized(name, h)})
		}
	}

	logger.Info(context.Background(), "tg.wire", "complete",
		slog.String("status", "ok"),
		slog.Int("count", len(routes)),
	)
	return routes
}

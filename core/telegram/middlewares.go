package telegram

import (
	"github.com/m3rciful/whoisbot/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared middleware chain for bots. counters
// may be nil to skip update counting.
func DefaultMiddlewares(counters *middleware.UpdateCounters) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
	}
	if counters != nil {
		mws = append(mws, Middleware{Name: "metrics", Use: counters.Middleware})
	}
	return mws
}

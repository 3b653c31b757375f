package telegram

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/whoisbot/core/logger"
	"github.com/m3rciful/whoisbot/core/telegram/netutil"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultClientTimeout     = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
	// Long polling holds the response open for the poll timeout.
	defaultResponseTimeout = defaultLongPollTimeout + 10*time.Second
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// Requests are never retried; transport failures are logged once.
func BuildHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ResponseHeaderTimeout: defaultResponseTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   defaultClientTimeout + defaultLongPollTimeout,
		Transport: &loggingTransport{base: transport},
	}
}

type loggingTransport struct {
	base http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil && req.Context().Err() == nil {
		logger.Debug(context.Background(), "tg", "http.fail",
			slog.String("status", "fail"),
			slog.String("endpoint", endpointOf(req)),
			slog.Bool("transient", netutil.IsTransient(err)),
			slog.Duration("duration", time.Since(start)),
		)
	}
	return resp, err
}

// endpointOf returns the Bot API method name without the token.
func endpointOf(req *http.Request) string {
	p := req.URL.Path
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}

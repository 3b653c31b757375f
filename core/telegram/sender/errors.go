package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/m3rciful/whoisbot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// Error kinds reported by Classify.
const (
	KindNotFound  = "not_found"
	KindForbidden = "forbidden"
	KindFlood     = "flood"
	KindTimeout   = "timeout"
	KindDNS       = "dns"
	KindDial      = "dial"
	KindTLS       = "tls"
	KindHTTP4xx   = "http_4xx"
	KindHTTP5xx   = "http_5xx"
	KindUnknown   = "unknown"
)

// Classify buckets a Telegram call failure for logging and for callers that
// swallow expected failures such as deleting an already deleted message.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return KindFlood
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"), strings.Contains(msg, "can't be deleted"),
		strings.Contains(msg, "message can't be edited"):
		return KindNotFound
	case strings.Contains(msg, "not enough rights"), strings.Contains(msg, "forbidden"),
		strings.Contains(msg, "bot was blocked"), strings.Contains(msg, "bot was kicked"):
		return KindForbidden
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindDial
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return KindTimeout
	}
	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return KindTLS
	}

	switch status := httpStatus(err); {
	case status == http.StatusForbidden:
		return KindForbidden
	case status >= 500:
		return KindHTTP5xx
	case status >= 400:
		return KindHTTP4xx
	}
	return KindUnknown
}

// IsExpected reports failures that best-effort calls silently accept.
func IsExpected(err error) bool {
	switch Classify(err) {
	case KindNotFound, KindForbidden:
		return true
	}
	return false
}

// Transient reports whether err looks like a network blip. Calls are never
// retried; the flag only goes to the logs.
func Transient(err error) bool {
	return netutil.IsTransient(err)
}

// SanitizeError renders err without the bot token.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

func httpStatus(err error) int {
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var groupErr tele.GroupError
	if errors.As(err, &groupErr) {
		return http.StatusBadRequest
	}

	msg := err.Error()
	open, closing := strings.LastIndex(msg, "("), strings.LastIndex(msg, ")")
	if open >= 0 && closing > open+1 {
		if code, convErr := strconv.Atoi(strings.TrimSpace(msg[open+1 : closing])); convErr == nil {
			return code
		}
	}
	return 0
}

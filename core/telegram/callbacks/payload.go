// Package callbacks parses inline button data of the form "key" or
// "key|payload", with or without Telebot's "\f" unique prefix.
package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Parse splits cb into its key and payload (may be empty).
func Parse(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	key, payload, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(key), payload
}

// Key returns the key part of cb.
func Key(cb *tele.Callback) string {
	k, _ := Parse(cb)
	return k
}

// PayloadInt64 parses the payload of cb as int64.
func PayloadInt64(cb *tele.Callback) (int64, error) {
	_, p := Parse(cb)
	return strconv.ParseInt(p, 10, 64)
}

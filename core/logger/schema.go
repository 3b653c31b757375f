package logger

import "strings"

const (
	// LevelDebug represents the debug severity level name.
	LevelDebug = "DEBUG"
	// LevelInfo represents the info severity level name.
	LevelInfo = "INFO"
	// LevelWarn represents the warning severity level name.
	LevelWarn = "WARN"
	// LevelError represents the error severity level name.
	LevelError = "ERROR"
)

// Status values understood by dashboards. Unknown values are passed through.
var knownStatus = map[string]struct{}{
	"ok":           {},
	"fail":         {},
	"skip":         {},
	"rate_limited": {},
	"blocked":      {},
	"not_found":    {},
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "", "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return strings.ToUpper(level)
}

func normalizeStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if _, ok := knownStatus[s]; ok {
		return s
	}
	return status
}

// defaultKeyOrder lists the keys printed first, in this order. Other keys
// follow alphabetically.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"kind",
	"command",
	"action",
	"screen",
	"mode",
	"tool",
	"target",
	"duration_ms",
	"count",
	"threshold",
	"listen",
	"public_url",
	"http_code",
	"endpoint",
	"err",
	"err_code",
	"error_kind",
	"transient",
}

package logger

import (
	"slices"
	"strings"
)

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
	"fatal":   "FATAL",
}

// Closed vocabularies for the status and outcome fields.
var (
	statusValues  = []string{"ok", "fail", "skip", "retry", "rate_limited", "cancelled"}
	outcomeValues = []string{"ok", "fail", "cancelled", "rate_limited"}
)

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if name, ok := levelNames[strings.ToLower(level)]; ok {
		return name
	}
	return strings.ToUpper(level)
}

// normalizeEnum lowercases v and reports whether it belongs to allowed.
func normalizeEnum(v string, allowed []string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	return v, v != "" && slices.Contains(allowed, v)
}

// defaultKeyOrder puts correlation fields first, then the catalog and
// transport fields, then errors. Unlisted keys follow alphabetically.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type",
	"handler", "state", "op", "cb_key", "outcome", "duration_ms",
	"item_id", "category", "media", "channel", "channel_msg_id", "count", "page",
	"payload", "lang", "username",
	"mode", "listen", "public_url", "addr", "method", "path", "http_status",
	"driver", "db",
	"err", "err_code", "cause", "attempts", "backoff_ms", "rate_limited",
}

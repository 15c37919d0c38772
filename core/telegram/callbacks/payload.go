package callbacks

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// PayloadParts splits the callback payload on Sep; nil when there is none.
func PayloadParts(c tele.Context) []string {
	if p := CallbackPayload(c); p != "" {
		return strings.Split(p, Sep)
	}
	return nil
}

// PayloadPart returns the i-th payload part, or "" when it is missing.
func PayloadPart(c tele.Context, i int) string {
	if parts := PayloadParts(c); i >= 0 && i < len(parts) {
		return strings.TrimSpace(parts[i])
	}
	return ""
}

// PayloadInt64 parses the first payload part, typically a row id.
func PayloadInt64(c tele.Context) (int64, error) {
	return strconv.ParseInt(PayloadPart(c, 0), 10, 64)
}

// PayloadInt parses the i-th part, returning def when the part is absent.
func PayloadInt(c tele.Context, i, def int) (int, error) {
	p := PayloadPart(c, i)
	if p == "" {
		return def, nil
	}
	return strconv.Atoi(p)
}

// PayloadTwoInt64 parses an "a|b" payload.
func PayloadTwoInt64(c tele.Context) (a, b int64, err error) {
	parts := PayloadParts(c)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want 2 payload parts, got %d", len(parts))
	}
	if a, err = strconv.ParseInt(parts[0], 10, 64); err != nil {
		return 0, 0, err
	}
	if b, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// classifiers are tried in order; the first match names the failure.
var classifiers = []struct {
	code  string
	match func(error) bool
}{
	{"timeout", func(err error) bool {
		var netErr net.Error
		return errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) && netErr.Timeout()
	}},
	{"dns", func(err error) bool {
		var dnsErr *net.DNSError
		return errors.As(err, &dnsErr)
	}},
	{"dial", func(err error) bool {
		var opErr *net.OpError
		return errors.As(err, &opErr) && opErr.Op == "dial"
	}},
	{"tls", func(err error) bool {
		var alert tls.AlertError
		return errors.As(err, &alert)
	}},
	{"http_5xx", func(err error) bool { return statusCode(err) >= 500 }},
	{"flood", func(err error) bool { return statusCode(err) == http.StatusTooManyRequests }},
	{"http_4xx", func(err error) bool { return statusCode(err) >= 400 }},
}

// classifyError maps a failed call to a short err_code for logs.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range classifiers {
		if c.match(err) {
			return c.code
		}
	}
	return "unknown"
}

// statusCode extracts the HTTP-like code of a Bot API error. telebot only
// keeps it as a trailing "(NNN)" on some errors.
func statusCode(err error) int {
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return http.StatusTooManyRequests
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.Code
	}
	var group tele.GroupError
	if errors.As(err, &group) {
		return http.StatusBadRequest
	}

	msg := strings.TrimSpace(err.Error())
	open := strings.LastIndexByte(msg, '(')
	if open < 0 || !strings.HasSuffix(msg, ")") {
		return 0
	}
	code, convErr := strconv.Atoi(msg[open+1 : len(msg)-1])
	if convErr != nil {
		return 0
	}
	return code
}

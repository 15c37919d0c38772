// Package router turns a Registry and a flow manager into telebot routes.
// Every route logs exactly one handler.handled line per update.
package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/vaultbot/core/logger"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"
	"github.com/m3rciful/vaultbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// chain wraps a route handler with update logging and panic recovery.
func chain(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.LoggerMiddleware(middleware.RecoverMiddleware(h))
}

// run executes fn as the named handler and logs its summary.
func run(c tele.Context, name string, fn tele.HandlerFunc, extra ...slog.Attr) error {
	start := time.Now()
	tghelpers.WithHandler(c, name)
	err := middleware.RecoverMiddleware(fn)(c)
	summarize(c, name, start, "", err, extra...)
	return err
}

// skip logs an update nobody handled.
func skip(c tele.Context, name string) {
	summarize(c, name, time.Now(), "skip", nil)
}

func summarize(c tele.Context, name string, start time.Time, status string, err error, extra ...slog.Attr) {
	ctx := tghelpers.WithHandler(c, name)
	msgs, kb := middleware.GetCounters(c)

	outcome, level := "ok", slog.LevelInfo
	if err != nil {
		outcome, level = "fail", slog.LevelError
	}
	if status == "" {
		status = outcome
	}
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(logger.Redact(err.Error()), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.TG, level, "handler.handled", append(attrs, extra...)...)
}

// handlerName turns a command or callback key into a log-friendly name.
func handlerName(key string) string {
	key = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(key), "/"))
	if key == "" {
		return "unknown"
	}
	return strings.ReplaceAll(key, " ", "_")
}

// errorCode prefers an error's own Code() and falls back to its type name.
func errorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := strings.TrimSpace(coded.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(t.Name())
}

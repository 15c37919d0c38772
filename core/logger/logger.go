package logger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/vaultbot/core/buildinfo"
	coreconfig "github.com/m3rciful/vaultbot/core/config"
)

const defaultDebugSample = "1/50"

var (
	initOnce sync.Once
	closeMu  sync.Mutex
	closed   bool

	sinks []*asyncWriter
	files []io.Closer
	level slog.LevelVar

	sampler = newRatioSampler(parseRatioSpec(defaultDebugSample))

	// trace disables debug sampling (TRACE=1 or LOG_TRACE=1).
	trace bool

	// L is the process logger. Handlers should prefer FromContext.
	L *slog.Logger

	// Component loggers, rebuilt by InitLogger.
	DB         *slog.Logger
	TG         *slog.Logger
	MIG        *slog.Logger
	TWire      *slog.Logger
	SVCUsers   *slog.Logger
	SVCItems   *slog.Logger
	SVCChannel *slog.Logger
	HTTP       *slog.Logger
)

func init() {
	L = slog.Default()
	wireComponents()
}

// settings is the logging section of the config with defaults applied.
type settings struct {
	format   logFormat
	keyOrder []string
	level    slog.Level
	sample   string
	profile  string
}

func settingsFrom(cfg *coreconfig.Config) settings {
	s := settings{
		format:   formatJSON,
		keyOrder: defaultKeyOrder,
		level:    slog.LevelInfo,
		sample:   defaultDebugSample,
		profile:  "prod",
	}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging
	s.profile = strings.ToLower(cmp.Or(strings.TrimSpace(lc.Profile), s.profile))
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.format = formatKV
	case "json":
	default:
		if s.profile == "debug" || s.profile == "dev" {
			s.format = formatKV
		}
	}
	if order := splitList(lc.KeysOrder); len(order) > 0 && lc.KeysOrder != "default" {
		s.keyOrder = order
	}
	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		s.level = slog.LevelDebug
	case "warn", "warning":
		s.level = slog.LevelWarn
	case "error":
		s.level = slog.LevelError
	}
	s.sample = cmp.Or(strings.TrimSpace(lc.DebugSample), s.sample)
	return s
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// InitLogger installs the structured handler as slog's default. Only the
// first call has any effect.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() { err = install(cfg) })
	return err
}

func install(cfg *coreconfig.Config) error {
	s := settingsFrom(cfg)
	level.Set(s.level)
	sampler.Set(parseRatioSpec(s.sample))
	trace = envFlag("TRACE") || envFlag("LOG_TRACE")

	outputs := []io.Writer{os.Stdout}
	var errOutputs []io.Writer
	if cfg != nil {
		bot, err := openLogFile(cfg.Logging.Dir, cfg.Logging.BotFile)
		if err != nil {
			return err
		}
		if bot != nil {
			files = append(files, bot)
			outputs = append(outputs, bot)
		}
		errs, err := openLogFile(cfg.Logging.Dir, cfg.Logging.ErrorsFile)
		if err != nil {
			return err
		}
		if errs != nil {
			files = append(files, errs)
			errOutputs = append(errOutputs, errs)
		}
	}

	hc := handlerConfig{level: &level, format: s.format, keyOrder: s.keyOrder}
	hc.writer = newAsyncWriter(outputs, 64*1024)
	sinks = append(sinks, hc.writer)
	if len(errOutputs) > 0 {
		hc.errWriter = newAsyncWriter(errOutputs, 16*1024)
		sinks = append(sinks, hc.errWriter)
	}

	L = slog.New(newStructuredHandler(hc))
	slog.SetDefault(L)
	wireComponents()

	L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
		slog.String("component", "app"),
		slog.String("go_version", runtime.Version()),
		slog.String("build_version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("cfg_profile", s.profile),
	)
	return nil
}

func wireComponents() {
	DB = Component("db")
	TG = Component("tg")
	MIG = Component("db.migrate")
	TWire = Component("tg.wire")
	SVCUsers = Component("service.users")
	SVCItems = Component("service.items")
	SVCChannel = Component("service.channel")
	HTTP = Component("http")
}

// openLogFile opens dir/name for appending. An empty dir or name means no file.
func openLogFile(dir, name string) (*os.File, error) {
	dir, name = strings.TrimSpace(dir), strings.TrimSpace(name)
	if dir == "" || name == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logger: create dir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open %s: %w", name, err)
	}
	return f, nil
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Shutdown drains the async writers and closes log files. Safe to call twice.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	for _, w := range sinks {
		errs = append(errs, w.Close())
	}
	for _, f := range files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// Component returns L scoped to the named component.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// LogEvent writes an event line through logg, or the ctx logger when logg is nil.
func LogEvent(ctx context.Context, logg *slog.Logger, lvl slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, lvl, "", attrs...)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelError, event, attrs...)
}

// ShouldSampleDebug gates high-volume debug lines such as per-update receipts.
func ShouldSampleDebug() bool {
	return trace || sampler.Allow()
}

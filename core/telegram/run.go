package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/vaultbot/core/config"
	"github.com/m3rciful/vaultbot/core/logger"
	tghelpers "github.com/m3rciful/vaultbot/core/telegram/helpers"
	tgsender "github.com/m3rciful/vaultbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a named global middleware installed with bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds a handler to a telebot endpoint (a command string, a
// tele.On* constant or a callback).
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions describes the bot RunTelegram builds.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	// Dispatcher is created from DispatcherOptions when nil.
	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	// DisableWebhookCleanup keeps a registered webhook in long-poll mode.
	DisableWebhookCleanup bool
	// DisableHelperDispatcher stops the helpers package from queueing sends.
	DisableHelperDispatcher bool

	// OnStart runs after handlers are installed and before updates flow.
	// An error aborts the run.
	OnStart func(ctx context.Context, rt Runtime) error
	// OnStop runs once updates stopped, with a context that is not cancelled.
	OnStop func(ctx context.Context, rt Runtime) error
}

// Runtime is what lifecycle hooks get to see.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram builds the bot and serves updates until ctx is cancelled.
// Cancellation is a clean stop and returns nil.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if opts.Config == nil {
		return errors.New("telegram: nil config provided")
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}

	bot, err := newBot(ctx, opts.Config)
	if err != nil {
		return err
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	if !opts.DisableHelperDispatcher {
		tghelpers.SetDispatcher(dispatcher)
	}
	defer func() {
		dispatcher.Close()
		if !opts.DisableHelperDispatcher {
			tghelpers.SetDispatcher(nil)
		}
	}()

	if opts.Config.Telegram.RunMode == coreconfig.RunModeLongpoll && !opts.DisableWebhookCleanup {
		dropWebhook(ctx, bot, opts.Config.Telegram.SkipPending)
	}
	install(bot, opts)

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: opts.Registry}
	if err := startRuntime(ctx, opts, rt); err != nil {
		return err
	}

	serve(ctx, bot)

	if opts.OnStop != nil {
		return opts.OnStop(context.WithoutCancel(ctx), rt)
	}
	return nil
}

// startRuntime runs OnStart. A failed start still gets OnStop so that whatever
// OnStart opened before failing is released.
func startRuntime(ctx context.Context, opts RunOptions, rt Runtime) error {
	if opts.OnStart == nil {
		return nil
	}
	err := opts.OnStart(ctx, rt)
	if err == nil {
		return nil
	}
	if opts.OnStop != nil {
		if stopErr := opts.OnStop(context.WithoutCancel(ctx), rt); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
	}
	return err
}

func newBot(ctx context.Context, cfg *coreconfig.Config) (*tele.Bot, error) {
	poller := newPoller(cfg)
	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  newHTTPClient(pollTimeout(cfg.Telegram)),
		OnError: logBotError,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %s", logger.Redact(err.Error()))
	}

	attrs := []slog.Attr{
		slog.String("event", "mode"),
		slog.String("bot", bot.Me.Username),
		slog.Duration("duration", time.Since(start)),
	}
	if wh, ok := poller.(*tele.Webhook); ok {
		attrs = append(attrs,
			slog.String("mode", "webhook"),
			slog.String("listen", wh.Listen),
			slog.String("public_url", wh.Endpoint.PublicURL),
		)
	} else {
		attrs = append(attrs,
			slog.String("mode", "polling"),
			slog.Int("timeout_seconds", int(pollTimeout(cfg.Telegram).Seconds())),
		)
	}
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "bot ready", attrs...)
	return bot, nil
}

func logBotError(err error, c tele.Context) {
	ctx := context.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.Error(ctx, "tg", "tg.error", slog.String("err", logger.SanitizeLimit(logger.Redact(err.Error()), 256)))
}

// dropWebhook removes a webhook left over from an earlier webhook run;
// Telegram refuses getUpdates while one is set.
func dropWebhook(ctx context.Context, bot *tele.Bot, dropPending bool) {
	attrs := []slog.Attr{slog.String("event", "delete_webhook"), slog.String("mode", "polling")}
	if err := bot.RemoveWebhook(dropPending); err != nil {
		logger.TG.LogAttrs(ctx, slog.LevelWarn, "failed to delete webhook",
			append(attrs, slog.String("err", logger.Redact(err.Error())))...)
		return
	}
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "webhook deleted", append(attrs, slog.Bool("drop_pending", dropPending))...)
}

func install(bot *tele.Bot, opts RunOptions) {
	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, r := range opts.Routes {
		if r.Endpoint != nil && r.Handler != nil {
			bot.Handle(r.Endpoint, r.Handler)
		}
	}
	publishCommands(bot, opts.Registry)
}

// serve runs the poller until ctx is done or the bot stops on its own.
func serve(ctx context.Context, bot *tele.Bot) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()
	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
	case <-done:
	}
}

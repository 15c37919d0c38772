// Package app assembles the vault bot from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/m3rciful/vaultbot/core/bootstrap"
	corecmd "github.com/m3rciful/vaultbot/core/cmd"
	"github.com/m3rciful/vaultbot/core/logger"
	tg "github.com/m3rciful/vaultbot/core/telegram"
	"github.com/m3rciful/vaultbot/core/telegram/sender"
	"github.com/m3rciful/vaultbot/internal/bot"
	"github.com/m3rciful/vaultbot/internal/catalog"
	"github.com/m3rciful/vaultbot/internal/channel"
	"github.com/m3rciful/vaultbot/internal/config"
	"github.com/m3rciful/vaultbot/internal/health"
	"github.com/m3rciful/vaultbot/internal/storage"
)

// App holds every long-lived component of the bot.
type App struct {
	cfg        *config.Config
	db         *sqlx.DB
	items      *catalog.ItemService
	users      *catalog.UserService
	publisher  *channel.Publisher
	dispatcher *sender.Dispatcher
	registry   *tg.Registry
	bot        *bot.Bot
	health     *health.Server
}

// LoadConfig adapts config.Load to the runner.
func LoadConfig(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Bootstrap prepares logging and the database, seeds the owner and builds the app.
func Bootstrap(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
		Seeders:  []bootstrap.Seeder{ownerSeeder(cfg)},
	})
	if err != nil {
		return nil, err
	}
	return New(cfg, res.DB)
}

func ownerSeeder(cfg *config.Config) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, db *sqlx.DB) error {
		st := storage.New(db)
		return catalog.NewUserService(st.Users, cfg.Telegram.OwnerID, cfg.Catalog.PageSize).SeedOwner(ctx)
	})
}

// New wires services and handlers over an open database.
func New(cfg *config.Config, db *sqlx.DB) (*App, error) {
	st := storage.New(db)
	dispatcher := sender.NewDispatcher(cfg.Send.Options())
	publisher := channel.NewPublisher(cfg.ChannelRef(), dispatcher)
	users := catalog.NewUserService(st.Users, cfg.Telegram.OwnerID, cfg.Catalog.PageSize)
	items := catalog.NewItemService(st.Items, users, publisher, cfg.Catalog)

	a := &App{
		cfg:        cfg,
		db:         db,
		items:      items,
		users:      users,
		publisher:  publisher,
		dispatcher: dispatcher,
		registry:   tg.NewRegistry(),
		bot:        bot.New(bot.Deps{Items: items, Users: users, Channel: publisher}),
	}
	if err := a.bot.Register(a.registry); err != nil {
		dispatcher.Close()
		return nil, fmt.Errorf("app: register handlers: %w", err)
	}
	if cfg.HTTP.Listen != "" {
		a.health = health.NewServer(cfg.HTTP.Listen, health.NewRouter(db, items))
	}
	return a, nil
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	return tg.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.registry,
		Dispatcher:  a.dispatcher,
		Middlewares: tg.DefaultMiddlewares(a.cfg.CoreConfig(), a.bot.OnRateLimited),
		Routes:      a.bot.Routes(a.registry),
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt tg.Runtime) error {
	g, gctx := errgroup.WithContext(ctx)
	if rt.Bot != nil {
		a.publisher.Bind(rt.Bot)
		g.Go(func() error {
			a.checkChannel(gctx)
			return nil
		})
	}
	if a.health != nil {
		g.Go(func() error {
			if _, err := a.health.Start(); err != nil {
				return fmt.Errorf("app: health server: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// checkChannel logs whether the storage channel is reachable. Uploads fail
// until it is, but the bot still serves browsing.
func (a *App) checkChannel(ctx context.Context) {
	attrs := []any{slog.String("event", "channel.check"), slog.String("channel", a.publisher.Ref().String())}
	title, err := a.publisher.Describe(ctx)
	if err != nil {
		logger.SVCChannel.Warn("storage channel unreachable", append(attrs, slog.String("err", logger.Redact(err.Error())))...)
		return
	}
	logger.SVCChannel.Info("storage channel ready", append(attrs, slog.String("title", title))...)
}

func (a *App) onStop(ctx context.Context, _ tg.Runtime) error {
	var errs []error
	if a.health != nil {
		if err := a.health.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("app: health shutdown: %w", err))
		}
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("app: close db: %w", err))
	}
	return errors.Join(errs...)
}

// Package bootstrap prepares process infrastructure before the bot starts:
// logging, schema migrations, the database pool and seed data.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/vaultbot/core/config"
	coredatabase "github.com/m3rciful/vaultbot/core/database"
	"github.com/m3rciful/vaultbot/core/logger"
)

// Seeder writes data the application expects once the schema exists.
// Seeders must be idempotent; they run on every start.
type Seeder interface {
	Seed(ctx context.Context, db *sqlx.DB) error
}

// SeederFunc adapts a function to Seeder.
type SeederFunc func(ctx context.Context, db *sqlx.DB) error

func (f SeederFunc) Seed(ctx context.Context, db *sqlx.DB) error { return f(ctx, db) }

// Options configures Run. Nil hooks fall back to the core implementations.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	Seeders  []Seeder

	LoggerInit func(*coreconfig.Config) error
	Migrate    func(coredatabase.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
}

func (o *Options) withDefaults() {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
}

// Result is the infrastructure handed to the application.
type Result struct {
	DB *sqlx.DB
}

// Run initializes logging, migrates, connects and seeds, in that order.
// Migrating before connecting lets a fresh SQLite file get its schema first.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	opts.withDefaults()

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}
	if err := opts.Migrate(opts.Database); err != nil {
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}
	db, err := opts.Connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	if err := seed(ctx, db, opts.Seeders); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Result{DB: db}, nil
}

func seed(ctx context.Context, db *sqlx.DB, seeders []Seeder) error {
	for i, s := range seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		err := s.Seed(ctx, db)
		attrs := []slog.Attr{slog.Int("index", i), slog.Duration("duration", time.Since(start))}
		if err != nil {
			logger.Error(ctx, "db.seed", "db.seed", append(attrs, slog.String("err", err.Error()))...)
			return fmt.Errorf("bootstrap: seeder %d failed: %w", i, err)
		}
		logger.Debug(ctx, "db.seed", "db.seed", attrs...)
	}
	return nil
}

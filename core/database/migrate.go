package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/vaultbot/core/logger"
)

const migrationPreview = 6

// RunMigrations brings the schema up to date using the files in
// <migrations_dir>/<driver>. It is a no-op when nothing is pending.
func RunMigrations(cfg Config) error {
	if err := cfg.Normalize(); err != nil {
		return err
	}
	ctx := context.Background()
	fail := func(event, msg string, err error) error {
		logger.MIG.LogAttrs(ctx, slog.LevelError, msg, slog.String("event", event), slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", msg, err)
	}

	if cfg.Driver == DriverPostgres {
		if err := WaitForDatabase(cfg.Driver, cfg.DSN(), 30*time.Second); err != nil {
			return fail("db.migrate", "database not ready", err)
		}
	}

	dir, err := filepath.Abs(filepath.Join(cfg.MigrationsDir, cfg.Driver))
	if err != nil {
		return fail("db.migrate", "resolve migrations path", err)
	}
	files := listMigrationFiles(dir)
	logger.MIG.LogAttrs(ctx, slog.LevelDebug, "migrations resolved",
		append(filesAttrs(files), slog.String("event", "resolve"), slog.String("path", dir))...)

	m, err := migrate.New("file://"+filepath.ToSlash(dir), cfg.MigrateURL())
	if err != nil {
		return fail("db.migrate", "init migrations", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.MIG.LogAttrs(ctx, slog.LevelWarn, "close failed",
				slog.String("event", "db.migrate"), slog.String("err", errors.Join(srcErr, dbErr).Error()))
		}
	}()

	from := currentVersion(m)
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fail("apply", "apply migrations", err)
	}
	to := currentVersion(m)

	applied := selectApplied(files, from, to)
	if len(applied) > 0 {
		logger.MIG.LogAttrs(ctx, slog.LevelDebug, "applied files", append(filesAttrs(applied), slog.String("event", "apply"))...)
	}
	logger.MIG.LogAttrs(ctx, slog.LevelInfo, "migrations summary",
		slog.String("event", "summary"),
		slog.String("driver", cfg.Driver),
		slog.Uint64("from_ver", from),
		slog.Uint64("to_ver", to),
		slog.Int("files", len(applied)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// currentVersion returns the applied schema version, 0 before the first migration.
func currentVersion(m *migrate.Migrate) uint64 {
	v, _, err := m.Version()
	if err != nil {
		return 0
	}
	return uint64(v)
}

func filesAttrs(files []string) []slog.Attr {
	preview, cut := logger.SummarizeStrings(files, migrationPreview)
	attrs := []slog.Attr{slog.Int("files_total", len(files))}
	if preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
	}
	if cut {
		attrs = append(attrs, slog.Bool("files_truncated", true))
	}
	return attrs
}

// listMigrationFiles returns the sorted *.up.sql file names in dir.
func listMigrationFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names
}

// selectApplied picks the files whose version lies in (from, to].
func selectApplied(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		prefix, _, _ := strings.Cut(f, "_")
		if v, err := strconv.ParseUint(prefix, 10, 64); err == nil && v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}

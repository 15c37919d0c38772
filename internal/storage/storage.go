// Package storage implements the catalog repositories on top of sqlx.
// Queries are written with '?' placeholders and rebound to the driver's style.
package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/vaultbot/internal/catalog"
)

// Store groups the repositories that share one connection pool.
type Store struct {
	db    *sqlx.DB
	Items *ItemRepo
	Users *UserRepo
}

// New builds the repositories over db.
func New(db *sqlx.DB) *Store {
	return &Store{
		db:    db,
		Items: &ItemRepo{db: db},
		Users: &UserRepo{db: db},
	}
}

// DB exposes the pool for health checks.
func (s *Store) DB() *sqlx.DB { return s.db }

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.ErrNotFound
	}
	return err
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

func nullInt(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

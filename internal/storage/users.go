package storage

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/vaultbot/internal/catalog"
)

const userColumns = `user_id, full_name, is_registered, is_mod, created_at`

// UserRepo stores bot users in the users table.
type UserRepo struct {
	db *sqlx.DB
}

var _ catalog.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Get(ctx context.Context, id int64) (catalog.User, error) {
	var u catalog.User
	if err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE user_id = ?`), id); err != nil {
		return catalog.User{}, notFound(err)
	}
	return u, nil
}

// InsertIfMissing reports whether a new row was created.
func (r *UserRepo) InsertIfMissing(ctx context.Context, u catalog.User) (bool, error) {
	q := r.db.Rebind(`
		INSERT INTO users (user_id, full_name, is_registered, is_mod, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING`)
	res, err := r.db.ExecContext(ctx, q, u.ID, u.FullName, u.IsRegistered, u.IsModerator, u.CreatedAt.UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepo) SetRegistered(ctx context.Context, id int64, registered bool) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET is_registered = ? WHERE user_id = ?`), registered, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *UserRepo) SetModerator(ctx context.Context, id int64, moderator bool) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET is_mod = ? WHERE user_id = ?`), moderator, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]catalog.User, error) {
	q := r.db.Rebind(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, user_id DESC LIMIT ? OFFSET ?`)
	var out []catalog.User
	if err := r.db.SelectContext(ctx, &out, q, limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}

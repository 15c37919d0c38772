package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/vaultbot/internal/catalog"
)

const itemColumns = `id, type, file_id, thumb_id, name, caption, uploader_id, status, channel_msg_id, created_at, deleted_at`

// ItemRepo stores catalog items in the items table.
type ItemRepo struct {
	db *sqlx.DB
}

var _ catalog.ItemRepository = (*ItemRepo)(nil)

// fold is what Search matches against. Folding happens here rather than in
// SQL because SQLite's LOWER only folds ASCII.
func fold(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(*s)
}

func (r *ItemRepo) Insert(ctx context.Context, it *catalog.Item) (int64, error) {
	q := r.db.Rebind(`
		INSERT INTO items (type, file_id, thumb_id, name, caption, name_fold, caption_fold,
		                   uploader_id, status, channel_msg_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	var id int64
	err := r.db.QueryRowxContext(ctx, q,
		string(it.Category), it.FileID, nullString(it.ThumbID), nullString(it.Name), nullString(it.Caption),
		fold(it.Name), fold(it.Caption),
		it.UploaderID, string(it.Status), nullInt(it.ChannelMsgID), it.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ItemRepo) Get(ctx context.Context, id int64) (catalog.Item, error) {
	var it catalog.Item
	q := r.db.Rebind(`SELECT ` + itemColumns + ` FROM items WHERE id = ?`)
	if err := r.db.GetContext(ctx, &it, q, id); err != nil {
		return catalog.Item{}, notFound(err)
	}
	return it, nil
}

func (r *ItemRepo) ListByCategory(ctx context.Context, cat catalog.Category, status catalog.Status, limit, offset int) ([]catalog.Item, error) {
	q := r.db.Rebind(`
		SELECT ` + itemColumns + ` FROM items
		WHERE type = ? AND status = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`)
	var out []catalog.Item
	if err := r.db.SelectContext(ctx, &out, q, string(cat), string(status), limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUploader lists one user's rows in the given status with ListByStatus ordering.
func (r *ItemRepo) ListByUploader(ctx context.Context, uploaderID int64, status catalog.Status, limit, offset int) ([]catalog.Item, error) {
	q := r.db.Rebind(`SELECT ` + itemColumns + ` FROM items WHERE uploader_id = ? AND status = ? ORDER BY ` +
		statusOrder(status) + ` LIMIT ? OFFSET ?`)
	var out []catalog.Item
	if err := r.db.SelectContext(ctx, &out, q, uploaderID, string(status), limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}

func statusOrder(status catalog.Status) string {
	if status == catalog.StatusTrashed {
		return "deleted_at DESC, id DESC"
	}
	return "created_at DESC, id DESC"
}

// ListByStatus orders trashed rows by deletion time, active rows by creation time.
func (r *ItemRepo) ListByStatus(ctx context.Context, status catalog.Status, limit, offset int) ([]catalog.Item, error) {
	q := r.db.Rebind(`SELECT ` + itemColumns + ` FROM items WHERE status = ? ORDER BY ` + statusOrder(status) + ` LIMIT ? OFFSET ?`)
	var out []catalog.Item
	if err := r.db.SelectContext(ctx, &out, q, string(status), limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ItemRepo) UpdateName(ctx context.Context, id int64, name *string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE items SET name = ?, name_fold = ? WHERE id = ?`), nullString(name), fold(name), id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *ItemRepo) UpdateCaption(ctx context.Context, id int64, caption *string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE items SET caption = ?, caption_fold = ? WHERE id = ?`), nullString(caption), fold(caption), id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *ItemRepo) SetStatus(ctx context.Context, id int64, status catalog.Status, deletedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE items SET status = ?, deleted_at = ? WHERE id = ?`),
		string(status), nullTime(deletedAt), id,
	)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *ItemRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM items WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return affected(res)
}

// DeleteByStatus removes every row with status and returns what was removed.
func (r *ItemRepo) DeleteByStatus(ctx context.Context, status catalog.Status) ([]catalog.Item, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var removed []catalog.Item
	if err := tx.SelectContext(ctx, &removed, tx.Rebind(`SELECT `+itemColumns+` FROM items WHERE status = ?`), string(status)); err != nil {
		return nil, fmt.Errorf("select %s: %w", status, err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM items WHERE status = ?`), string(status)); err != nil {
		return nil, fmt.Errorf("delete %s: %w", status, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return removed, nil
}

// Search expects pattern to be lowercased with strings.ToLower and
// LIKE-escaped with '\'.
func (r *ItemRepo) Search(ctx context.Context, pattern string, cat *catalog.Category, limit int) ([]catalog.Item, error) {
	q := `
		SELECT ` + itemColumns + ` FROM items
		WHERE status = ?
		  AND (name_fold LIKE ? ESCAPE '\' OR caption_fold LIKE ? ESCAPE '\')`
	args := []any{string(catalog.StatusActive), pattern, pattern}
	if cat != nil {
		q += ` AND type = ?`
		args = append(args, string(*cat))
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	var out []catalog.Item
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ItemRepo) Stats(ctx context.Context) (catalog.Stats, error) {
	var rows []struct {
		Category string `db:"type"`
		Status   string `db:"status"`
		N        int    `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT type, status, COUNT(*) AS n FROM items GROUP BY type, status`); err != nil {
		return catalog.Stats{}, err
	}
	st := catalog.Stats{ByCategory: make(map[catalog.Category]int, len(catalog.Categories))}
	for _, c := range catalog.Categories {
		st.ByCategory[c] = 0
	}
	for _, row := range rows {
		st.Total += row.N
		switch catalog.Status(row.Status) {
		case catalog.StatusActive:
			st.Active += row.N
			st.ByCategory[catalog.Category(row.Category)] += row.N
		case catalog.StatusTrashed:
			st.Trashed += row.N
		}
	}
	return st, nil
}

package catalog

import (
	"context"
	"time"
)

// ItemRepository persists catalog items.
type ItemRepository interface {
	Insert(ctx context.Context, it *Item) (int64, error)
	Get(ctx context.Context, id int64) (Item, error)
	ListByCategory(ctx context.Context, cat Category, status Status, limit, offset int) ([]Item, error)
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]Item, error)
	ListByUploader(ctx context.Context, uploaderID int64, status Status, limit, offset int) ([]Item, error)
	UpdateName(ctx context.Context, id int64, name *string) error
	UpdateCaption(ctx context.Context, id int64, caption *string) error
	SetStatus(ctx context.Context, id int64, status Status, deletedAt *time.Time) error
	Delete(ctx context.Context, id int64) error
	DeleteByStatus(ctx context.Context, status Status) ([]Item, error)
	Search(ctx context.Context, pattern string, cat *Category, limit int) ([]Item, error)
	Stats(ctx context.Context) (Stats, error)
}

// UserRepository persists users and their flags.
type UserRepository interface {
	Get(ctx context.Context, id int64) (User, error)
	InsertIfMissing(ctx context.Context, u User) (bool, error)
	SetRegistered(ctx context.Context, id int64, registered bool) error
	SetModerator(ctx context.Context, id int64, moderator bool) error
	List(ctx context.Context, limit, offset int) ([]User, error)
}

// Publisher mirrors uploads into the storage channel.
type Publisher interface {
	Publish(ctx context.Context, a Attachment) (int, error)
	Delete(ctx context.Context, messageID int) error
}

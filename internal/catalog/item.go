package catalog

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the soft-delete state of an item.
type Status string

const (
	StatusActive  Status = "active"
	StatusTrashed Status = "trashed"
)

// Item is one catalog entry backed by a message in the storage channel.
type Item struct {
	ID           int64      `db:"id"`
	Category     Category   `db:"type"`
	FileID       string     `db:"file_id"`
	ThumbID      *string    `db:"thumb_id"`
	Name         *string    `db:"name"`
	Caption      *string    `db:"caption"`
	UploaderID   int64      `db:"uploader_id"`
	Status       Status     `db:"status"`
	ChannelMsgID *int64     `db:"channel_msg_id"`
	CreatedAt    time.Time  `db:"created_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

const captionTitleRunes = 20

// DisplayTitle returns the name, a shortened caption, or "<category> #<id>".
func (it Item) DisplayTitle() string {
	if it.Name != nil && strings.TrimSpace(*it.Name) != "" {
		return *it.Name
	}
	if it.Caption != nil && strings.TrimSpace(*it.Caption) != "" {
		c := strings.TrimSpace(*it.Caption)
		if utf8.RuneCountInString(c) > captionTitleRunes {
			c = string([]rune(c)[:captionTitleRunes])
		}
		return c + "…"
	}
	return fmt.Sprintf("%s #%d", it.Category, it.ID)
}

// Trashed reports whether the item is in the trash.
func (it Item) Trashed() bool { return it.Status == StatusTrashed }

// Role is the permission level of a user.
type Role int

const (
	RoleGuest Role = iota
	RoleUser
	RoleModerator
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleModerator:
		return "moderator"
	case RoleUser:
		return "user"
	default:
		return "guest"
	}
}

// CanModerate reports whether the role may manage any item.
func (r Role) CanModerate() bool { return r >= RoleModerator }

// User is a Telegram account known to the bot.
type User struct {
	ID           int64     `db:"user_id"`
	FullName     string    `db:"full_name"`
	IsRegistered bool      `db:"is_registered"`
	IsModerator  bool      `db:"is_mod"`
	CreatedAt    time.Time `db:"created_at"`
}

// Stats summarizes catalog contents.
type Stats struct {
	Total      int
	Active     int
	Trashed    int
	ByCategory map[Category]int
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/m3rciful/vaultbot/core/logger"
)

// purgeWorkers bounds concurrent channel deletions during PurgeTrash.
const purgeWorkers = 4

// ItemService implements uploads, browsing, editing and the trash.
type ItemService struct {
	repo      ItemRepository
	users     *UserService
	publisher Publisher
	limits    Limits
	now       func() time.Time
}

// NewItemService wires the item service.
func NewItemService(repo ItemRepository, users *UserService, pub Publisher, limits Limits) *ItemService {
	return &ItemService{
		repo:      repo,
		users:     users,
		publisher: pub,
		limits:    limits.WithDefaults(),
		now:       utcNow,
	}
}

// Limits exposes the effective limits.
func (s *ItemService) Limits() Limits { return s.limits }

// Upload relays the attachment to the storage channel and records it.
// target is the category chosen in the menu; nil files it under the detected one.
func (s *ItemService) Upload(ctx context.Context, uploaderID int64, target *Category, a Attachment) (Item, error) {
	if strings.TrimSpace(a.FileID) == "" {
		return Item{}, ErrUnsupportedMedia
	}
	registered, err := s.users.IsRegistered(ctx, uploaderID)
	if err != nil {
		return Item{}, err
	}
	if !registered {
		return Item{}, ErrNotRegistered
	}

	detected := Classify(a)
	cat := detected
	if target != nil {
		if !Accepts(*target, detected) {
			return Item{}, &MismatchError{Target: *target, Detected: detected}
		}
		cat = *target
	}

	msgID, err := s.publisher.Publish(ctx, a)
	if err != nil {
		return Item{}, fmt.Errorf("publish to channel: %w", err)
	}
	chID := int64(msgID)

	it := Item{
		Category:     cat,
		FileID:       a.FileID,
		ThumbID:      optional(a.ThumbID),
		Name:         optional(a.FileName),
		Caption:      optional(a.Caption),
		UploaderID:   uploaderID,
		Status:       StatusActive,
		ChannelMsgID: &chID,
		CreatedAt:    s.now(),
	}
	id, err := s.repo.Insert(ctx, &it)
	if err != nil {
		s.dropChannelCopy(ctx, it)
		return Item{}, fmt.Errorf("insert item: %w", err)
	}
	it.ID = id
	logger.SVCItems.Info("item uploaded",
		slog.String("event", "item.upload"),
		slog.Int64("item_id", id),
		slog.Int64("user_id", uploaderID),
		slog.String("category", string(cat)),
		slog.String("media", string(a.Kind)),
		slog.Int64("channel_msg_id", chID),
	)
	return it, nil
}

// ListActive returns a page of active items in a category, newest first.
func (s *ItemService) ListActive(ctx context.Context, cat Category, page int) (Page[Item], error) {
	if !cat.Valid() {
		return Page[Item]{}, ErrUnknownCategory
	}
	limit, offset := pageWindow(page, s.limits.PageSize)
	rows, err := s.repo.ListByCategory(ctx, cat, StatusActive, limit, offset)
	if err != nil {
		return Page[Item]{}, fmt.Errorf("list %s: %w", cat, err)
	}
	return newPage(rows, page, s.limits.PageSize), nil
}

// ListTrash returns a page of trashed items, most recently deleted first.
// Moderators see the whole trash, everyone else only their own uploads.
func (s *ItemService) ListTrash(ctx context.Context, actorID int64, page int) (Page[Item], error) {
	mod, err := s.users.IsModerator(ctx, actorID)
	if err != nil {
		return Page[Item]{}, err
	}
	limit, offset := pageWindow(page, s.limits.PageSize)
	var rows []Item
	if mod {
		rows, err = s.repo.ListByStatus(ctx, StatusTrashed, limit, offset)
	} else {
		rows, err = s.repo.ListByUploader(ctx, actorID, StatusTrashed, limit, offset)
	}
	if err != nil {
		return Page[Item]{}, fmt.Errorf("list trash: %w", err)
	}
	return newPage(rows, page, s.limits.PageSize), nil
}

// Get returns an item by id. Trashed items are only visible to moderators and the uploader.
func (s *ItemService) Get(ctx context.Context, actorID, id int64) (Item, error) {
	it, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if it.Trashed() {
		ok, err := s.CanManage(ctx, actorID, it)
		if err != nil {
			return Item{}, err
		}
		if !ok {
			return Item{}, ErrNotFound
		}
	}
	return it, nil
}

// CanManage reports whether actor may edit or trash the item.
func (s *ItemService) CanManage(ctx context.Context, actorID int64, it Item) (bool, error) {
	if it.UploaderID == actorID {
		return true, nil
	}
	return s.users.IsModerator(ctx, actorID)
}

// Rename sets the item name.
func (s *ItemService) Rename(ctx context.Context, actorID, id int64, name string) (Item, error) {
	val, err := s.cleanText("name", name, s.limits.NameMax)
	if err != nil {
		return Item{}, err
	}
	it, err := s.manageable(ctx, actorID, id)
	if err != nil {
		return Item{}, err
	}
	if err := s.repo.UpdateName(ctx, id, val); err != nil {
		return Item{}, fmt.Errorf("rename item %d: %w", id, err)
	}
	it.Name = val
	s.logChange("item.rename", actorID, id)
	return it, nil
}

// SetCaption sets the item caption.
func (s *ItemService) SetCaption(ctx context.Context, actorID, id int64, caption string) (Item, error) {
	val, err := s.cleanText("caption", caption, s.limits.CaptionMax)
	if err != nil {
		return Item{}, err
	}
	it, err := s.manageable(ctx, actorID, id)
	if err != nil {
		return Item{}, err
	}
	if err := s.repo.UpdateCaption(ctx, id, val); err != nil {
		return Item{}, fmt.Errorf("caption item %d: %w", id, err)
	}
	it.Caption = val
	s.logChange("item.caption", actorID, id)
	return it, nil
}

// Trash soft-deletes an active item.
func (s *ItemService) Trash(ctx context.Context, actorID, id int64) (Item, error) {
	it, err := s.manageable(ctx, actorID, id)
	if err != nil {
		return Item{}, err
	}
	if it.Trashed() {
		return it, nil
	}
	now := s.now()
	if err := s.repo.SetStatus(ctx, id, StatusTrashed, &now); err != nil {
		return Item{}, fmt.Errorf("trash item %d: %w", id, err)
	}
	it.Status, it.DeletedAt = StatusTrashed, &now
	s.logChange("item.trash", actorID, id)
	return it, nil
}

// Restore moves a trashed item back to its category.
func (s *ItemService) Restore(ctx context.Context, actorID, id int64) (Item, error) {
	it, err := s.manageable(ctx, actorID, id)
	if err != nil {
		return Item{}, err
	}
	if !it.Trashed() {
		return it, nil
	}
	if err := s.repo.SetStatus(ctx, id, StatusActive, nil); err != nil {
		return Item{}, fmt.Errorf("restore item %d: %w", id, err)
	}
	it.Status, it.DeletedAt = StatusActive, nil
	s.logChange("item.restore", actorID, id)
	return it, nil
}

// Purge permanently removes a trashed item. Moderators only.
// The channel copy is removed best-effort.
func (s *ItemService) Purge(ctx context.Context, actorID, id int64) error {
	if err := s.users.requireModerator(ctx, actorID); err != nil {
		return err
	}
	it, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !it.Trashed() {
		return &InputError{Field: "item", Reason: "only trashed items can be purged"}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("purge item %d: %w", id, err)
	}
	s.dropChannelCopy(ctx, it)
	s.logChange("item.purge", actorID, id)
	return nil
}

// PurgeTrash permanently removes every trashed item and returns how many were removed.
func (s *ItemService) PurgeTrash(ctx context.Context, actorID int64) (int, error) {
	if err := s.users.requireModerator(ctx, actorID); err != nil {
		return 0, err
	}
	removed, err := s.repo.DeleteByStatus(ctx, StatusTrashed)
	if err != nil {
		return 0, fmt.Errorf("purge trash: %w", err)
	}
	var g errgroup.Group
	g.SetLimit(purgeWorkers)
	for _, it := range removed {
		g.Go(func() error {
			s.dropChannelCopy(ctx, it)
			return nil
		})
	}
	_ = g.Wait()
	logger.SVCItems.Info("trash purged",
		slog.String("event", "item.purge_all"),
		slog.Int64("user_id", actorID),
		slog.Int("count", len(removed)),
	)
	return len(removed), nil
}

// Search matches active item names and captions case-insensitively. cat narrows to one category.
func (s *ItemService) Search(ctx context.Context, keyword string, cat *Category) ([]Item, error) {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return nil, &InputError{Field: "keyword", Reason: "empty"}
	}
	if utf8.RuneCountInString(kw) > s.limits.KeywordMax {
		return nil, &InputError{Field: "keyword", Reason: fmt.Sprintf("longer than %d characters", s.limits.KeywordMax)}
	}
	if cat != nil && !cat.Valid() {
		return nil, ErrUnknownCategory
	}
	rows, err := s.repo.Search(ctx, LikePattern(kw), cat, s.limits.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return rows, nil
}

// Stats returns catalog counters. Moderators only.
func (s *ItemService) Stats(ctx context.Context, actorID int64) (Stats, error) {
	if err := s.users.requireModerator(ctx, actorID); err != nil {
		return Stats{}, err
	}
	return s.repo.Stats(ctx)
}

// Counters returns catalog counters without a permission check.
func (s *ItemService) Counters(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

// LikePattern lowercases kw, escapes LIKE wildcards with '\' and wraps it in '%'.
func LikePattern(kw string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(kw)) + "%"
}

func (s *ItemService) manageable(ctx context.Context, actorID, id int64) (Item, error) {
	it, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	ok, err := s.CanManage(ctx, actorID, it)
	if err != nil {
		return Item{}, err
	}
	if !ok {
		return Item{}, ErrForbidden
	}
	return it, nil
}

func (s *ItemService) cleanText(field, v string, max int) (*string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, &InputError{Field: field, Reason: "empty"}
	}
	if utf8.RuneCountInString(v) > max {
		return nil, &InputError{Field: field, Reason: fmt.Sprintf("longer than %d characters", max)}
	}
	return optional(v), nil
}

func (s *ItemService) dropChannelCopy(ctx context.Context, it Item) {
	if it.ChannelMsgID == nil || s.publisher == nil {
		return
	}
	if err := s.publisher.Delete(ctx, int(*it.ChannelMsgID)); err != nil && !errors.Is(err, context.Canceled) {
		logger.SVCItems.Warn("channel copy not removed",
			slog.String("event", "item.purge"),
			slog.Int64("item_id", it.ID),
			slog.Int64("channel_msg_id", *it.ChannelMsgID),
			slog.String("err", err.Error()),
		)
	}
}

func (s *ItemService) logChange(event string, actorID, id int64) {
	logger.SVCItems.Info("item changed",
		slog.String("event", event),
		slog.Int64("item_id", id),
		slog.Int64("user_id", actorID),
	)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

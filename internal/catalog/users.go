package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/vaultbot/core/logger"
)

// UserService manages registration and moderator flags.
type UserService struct {
	repo     UserRepository
	ownerID  int64
	pageSize int
	now      func() time.Time
}

// NewUserService wires the user service. ownerID 0 disables owner features.
func NewUserService(repo UserRepository, ownerID int64, pageSize int) *UserService {
	if pageSize <= 0 {
		pageSize = DefaultLimits().PageSize
	}
	return &UserService{repo: repo, ownerID: ownerID, pageSize: pageSize, now: utcNow}
}

// OwnerID returns the configured owner, or 0.
func (s *UserService) OwnerID() int64 { return s.ownerID }

// IsOwner reports whether id is the configured owner.
func (s *UserService) IsOwner(id int64) bool { return s.ownerID != 0 && id == s.ownerID }

// Ensure records a user on first contact. Existing rows are left untouched.
func (s *UserService) Ensure(ctx context.Context, id int64, fullName string) error {
	created, err := s.repo.InsertIfMissing(ctx, User{
		ID:        id,
		FullName:  strings.TrimSpace(fullName),
		CreatedAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("ensure user %d: %w", id, err)
	}
	if created {
		logger.SVCUsers.Info("user created",
			slog.String("event", "user.create"),
			slog.Int64("user_id", id),
		)
	}
	return nil
}

// Register marks the user as registered so uploads are accepted.
func (s *UserService) Register(ctx context.Context, id int64, fullName string) error {
	if err := s.Ensure(ctx, id, fullName); err != nil {
		return err
	}
	if err := s.repo.SetRegistered(ctx, id, true); err != nil {
		return fmt.Errorf("register user %d: %w", id, err)
	}
	logger.SVCUsers.Info("user registered",
		slog.String("event", "user.register"),
		slog.Int64("user_id", id),
	)
	return nil
}

// GetUserByTelegramID returns the stored user or ErrNotFound.
func (s *UserService) GetUserByTelegramID(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// Role resolves the permission level of a user. Unknown users are guests.
func (s *UserService) Role(ctx context.Context, id int64) (Role, error) {
	if s.IsOwner(id) {
		return RoleOwner, nil
	}
	u, err := s.repo.Get(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return RoleGuest, nil
	case err != nil:
		return RoleGuest, fmt.Errorf("role of %d: %w", id, err)
	case u.IsModerator:
		return RoleModerator, nil
	case u.IsRegistered:
		return RoleUser, nil
	default:
		return RoleGuest, nil
	}
}

// IsModerator reports whether id is the owner or a moderator.
func (s *UserService) IsModerator(ctx context.Context, id int64) (bool, error) {
	r, err := s.Role(ctx, id)
	return r.CanModerate(), err
}

// IsRegistered reports whether the user completed registration.
func (s *UserService) IsRegistered(ctx context.Context, id int64) (bool, error) {
	u, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsRegistered, nil
}

// List returns one page of users, newest first. Moderators only.
func (s *UserService) List(ctx context.Context, actorID int64, page int) (Page[User], error) {
	if err := s.requireModerator(ctx, actorID); err != nil {
		return Page[User]{}, err
	}
	limit, offset := pageWindow(page, s.pageSize)
	rows, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return Page[User]{}, fmt.Errorf("list users: %w", err)
	}
	return newPage(rows, page, s.pageSize), nil
}

// ToggleModerator flips the moderator flag of target and returns the new value.
// Only the owner may toggle and the owner cannot be toggled.
func (s *UserService) ToggleModerator(ctx context.Context, actorID, targetID int64) (bool, error) {
	if !s.IsOwner(actorID) || s.IsOwner(targetID) {
		return false, ErrForbidden
	}
	u, err := s.repo.Get(ctx, targetID)
	if err != nil {
		return false, err
	}
	next := !u.IsModerator
	if err := s.repo.SetModerator(ctx, targetID, next); err != nil {
		return false, fmt.Errorf("toggle moderator %d: %w", targetID, err)
	}
	logger.SVCUsers.Info("moderator toggled",
		slog.String("event", "user.moderator"),
		slog.Int64("user_id", targetID),
		slog.Bool("is_mod", next),
	)
	return next, nil
}

// SeedOwner makes sure the owner row exists, registered and moderating.
func (s *UserService) SeedOwner(ctx context.Context) error {
	if s.ownerID == 0 {
		return nil
	}
	if _, err := s.repo.InsertIfMissing(ctx, User{ID: s.ownerID, FullName: "owner", CreatedAt: s.now()}); err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}
	if err := s.repo.SetRegistered(ctx, s.ownerID, true); err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}
	if err := s.repo.SetModerator(ctx, s.ownerID, true); err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}
	return nil
}

func (s *UserService) requireModerator(ctx context.Context, id int64) error {
	ok, err := s.IsModerator(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func utcNow() time.Time { return time.Now().UTC() }

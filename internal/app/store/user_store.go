// Package store holds shared data access for the entitlement row-store.
// Services compose it rather than talking to gorm directly so the optimistic
// concurrency protocol lives in exactly one place.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/salesreport/internal/models"
)

var (
	// ErrVersionConflict is returned when a conditional update matched no
	// row: another writer advanced the version between read and write.
	ErrVersionConflict = errors.New("user row version conflict")
	// ErrNotFound mirrors gorm.ErrRecordNotFound for callers that should not
	// depend on gorm directly.
	ErrNotFound = errors.New("user not found")
)

// UpdateRetries bounds optimistic-concurrency retry loops. Conflicts on a
// single user row are rare (one person, a handful of devices), so a small
// number is plenty.
const UpdateRetries = 3

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) DB() *gorm.DB {
	return s.db
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// UpdateVersioned applies fields to the row identified by user.Email, but
// only if the row still carries user.Version. The version column advances on
// success. A conflicting writer surfaces as ErrVersionConflict; callers
// re-read and retry (bounded by UpdateRetries).
func (s *UserStore) UpdateVersioned(ctx context.Context, user *models.User, fields map[string]any) error {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["version"] = user.Version + 1

	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND version = ?", user.Email, user.Version).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", user.Email, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	user.Version++
	return nil
}

// Mutate runs fn against a fresh read of the user row and persists the fields
// it returns via a conditional update, retrying on version conflicts. fn may
// return nil fields to signal there is nothing to write.
func (s *UserStore) Mutate(ctx context.Context, email string, fn func(*models.User) (map[string]any, error)) (*models.User, error) {
	var lastErr error
	for attempt := 0; attempt < UpdateRetries; attempt++ {
		user, err := s.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}

		fields, err := fn(user)
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			return user, nil
		}

		if err := s.UpdateVersioned(ctx, user, fields); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		// return the persisted state, not the pre-write snapshot
		return s.GetByEmail(ctx, email)
	}
	return nil, fmt.Errorf("gave up after %d attempts: %w", UpdateRetries, lastErr)
}

// Upsert inserts the user or, on email conflict, updates the given columns.
func (s *UserStore) Upsert(ctx context.Context, user *models.User, columns []string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(user).Error
}

var Module = fx.Options(
	fx.Provide(NewUserStore),
)

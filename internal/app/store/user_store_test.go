package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/salesreport/internal/models"
	"github.com/fatflowers/salesreport/internal/testutil"
)

func TestUpdateVersioned_ConflictOnStaleVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	seeded := testutil.SeedUser(t, db)

	fresh, err := s.GetByEmail(ctx, seeded.Email)
	require.NoError(t, err)

	stale := *fresh

	// first writer wins
	require.NoError(t, s.UpdateVersioned(ctx, fresh, map[string]any{"usage_count": 1}))

	// second writer holds the old version and must conflict
	err = s.UpdateVersioned(ctx, &stale, map[string]any{"usage_count": 1})
	require.ErrorIs(t, err, ErrVersionConflict)
}

func TestMutate_RetriesPastConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	seeded := testutil.SeedUser(t, db)

	interfered := false
	user, err := s.Mutate(ctx, seeded.Email, func(u *models.User) (map[string]any, error) {
		if !interfered {
			// simulate a concurrent writer racing the first attempt
			interfered = true
			require.NoError(t, db.Model(&models.User{}).
				Where("email = ?", u.Email).
				Update("version", u.Version+1).Error)
		}
		return map[string]any{"usage_count": u.UsageCount + 1}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, user.UsageCount)
}

func TestMutate_NilFieldsWritesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	seeded := testutil.SeedUser(t, db)

	user, err := s.Mutate(ctx, seeded.Email, func(u *models.User) (map[string]any, error) {
		return nil, nil
	})
	require.NoError(t, err)
	require.Equal(t, seeded.Version, user.Version)
}

func TestGetByEmail_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := NewUserStore(db)

	_, err := s.GetByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

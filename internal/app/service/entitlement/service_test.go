package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/salesreport/internal/app/store"
	"github.com/fatflowers/salesreport/internal/testutil"
	cfgpkg "github.com/fatflowers/salesreport/pkg/config"
	"github.com/fatflowers/salesreport/pkg/types"
	"gorm.io/gorm"
)

func newService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	cfg := &cfgpkg.Config{Quota: cfgpkg.QuotaConfig{FreeLimit: 3}}
	return NewService(store.NewUserStore(db), cfg, zap.NewNop().Sugar())
}

func TestGetUsageCount_ResetsAfterMonthRollover(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newService(t, db)
	ctx := context.Background()

	lastMonth := time.Now().AddDate(0, -1, 0)
	u := testutil.SeedUser(t, db, testutil.WithUsage(3, lastMonth))

	count, err := s.GetUsageCount(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	// the reset must be persisted, not just reported
	fresh, err := store.NewUserStore(db).GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, 0, fresh.UsageCount)
	require.True(t, fresh.SameCalendarMonth(time.Now()))
}

func TestGetUsageCount_SameMonthKeepsCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newService(t, db)

	u := testutil.SeedUser(t, db, testutil.WithUsage(2, time.Now()))

	count, err := s.GetUsageCount(context.Background(), u.Email)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestGetUsageCount_UnknownUserIsZero(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newService(t, db)

	count, err := s.GetUsageCount(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestIncrementUsage_FourthAttemptRefused(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newService(t, db)
	ctx := context.Background()

	u := testutil.SeedUser(t, db)

	for want := 1; want <= 3; want++ {
		count, err := s.IncrementUsage(ctx, u.Email)
		require.NoError(t, err)
		require.Equal(t, want, count)
	}

	_, err := s.IncrementUsage(ctx, u.Email)
	require.ErrorIs(t, err, ErrLimitReached)

	// the refused attempt must not have incremented
	count, err := s.GetUsageCount(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestIncrementUsage_PaidPlanBypassesLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newService(t, db)
	ctx := context.Background()

	u := testutil.SeedUser(t, db, testutil.WithPlan(types.PlanPro), testutil.WithUsage(50, time.Now()))

	count, err := s.IncrementUsage(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, 51, count)
}

func TestIncrementUsage_RolloverResetsBeforeCharging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newService(t, db)
	ctx := context.Background()

	lastMonth := time.Now().AddDate(0, -1, 0)
	u := testutil.SeedUser(t, db, testutil.WithUsage(3, lastMonth))

	count, err := s.IncrementUsage(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestCanUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newService(t, db)
	ctx := context.Background()

	free := testutil.SeedUser(t, db, testutil.WithUsage(3, time.Now()))
	ok, err := s.CanUse(ctx, free.Email)
	require.NoError(t, err)
	require.False(t, ok)

	pro := testutil.SeedUser(t, db, testutil.WithPlan(types.PlanPro), testutil.WithUsage(99, time.Now()))
	ok, err = s.CanUse(ctx, pro.Email)
	require.NoError(t, err)
	require.True(t, ok)
}

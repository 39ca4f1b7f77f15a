package gamification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/salesreport/internal/app/store"
	"github.com/fatflowers/salesreport/internal/models"
	"github.com/fatflowers/salesreport/internal/testutil"
)

func newService(db *gorm.DB) *Service {
	return NewService(store.NewUserStore(db), zap.NewNop().Sugar())
}

func TestTouch_FirstEverAction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newService(db)

	u := testutil.SeedUser(t, db)

	res, err := s.Touch(context.Background(), u.Email)
	require.NoError(t, err)
	require.Equal(t, 1, res.Streak)
	require.True(t, res.IsNewDay)
}

func TestTouch_SameDayDoesNotChangeStreak(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newService(db)
	ctx := context.Background()

	u := testutil.SeedUser(t, db, testutil.WithStreak(4, time.Now()))

	for i := 0; i < 3; i++ {
		res, err := s.Touch(ctx, u.Email)
		require.NoError(t, err)
		require.Equal(t, 4, res.Streak)
		require.False(t, res.IsNewDay)
	}
}

func TestTouch_OneDayGapIncrements(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newService(db)

	yesterday := time.Now().AddDate(0, 0, -1)
	u := testutil.SeedUser(t, db, testutil.WithStreak(4, yesterday))

	res, err := s.Touch(context.Background(), u.Email)
	require.NoError(t, err)
	require.Equal(t, 5, res.Streak)
	require.True(t, res.IsNewDay)
}

func TestTouch_TwoDayGapResets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newService(db)

	u := testutil.SeedUser(t, db, testutil.WithStreak(9, time.Now().AddDate(0, 0, -2)))

	res, err := s.Touch(context.Background(), u.Email)
	require.NoError(t, err)
	require.Equal(t, 1, res.Streak)
	require.True(t, res.IsNewDay)
}

func TestTouch_ScoreMatchesFormula(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newService(db)
	ctx := context.Background()

	yesterday := time.Now().AddDate(0, 0, -1)
	u := testutil.SeedUser(t, db, testutil.WithStreak(2, yesterday), func(u *models.User) {
		u.UsageCount = 7
		u.ReferralCount = 3
	})

	res, err := s.Touch(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, 3, res.Streak)
	// usage*10 + streak*5 + referrals*50
	require.Equal(t, 7*10+3*5+3*50, res.Score)

	fresh, err := store.NewUserStore(db).GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, res.Score, fresh.SalesScore)
	require.Equal(t, fresh.ComputeSalesScore(), fresh.SalesScore)
}

func TestTouch_ScoreSelfHealsAfterDrift(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := newService(db)
	ctx := context.Background()

	u := testutil.SeedUser(t, db, testutil.WithStreak(1, time.Now()), func(u *models.User) {
		u.UsageCount = 2
		u.SalesScore = 99999 // corrupted out of band
	})

	res, err := s.Touch(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, 2*10+1*5, res.Score)

	fresh, err := store.NewUserStore(db).GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, res.Score, fresh.SalesScore)
}

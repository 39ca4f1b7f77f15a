package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/salesreport/internal/app/service/entitlement"
	"github.com/fatflowers/salesreport/internal/app/service/referral"
	"github.com/fatflowers/salesreport/internal/app/service/verification"
	"github.com/fatflowers/salesreport/internal/app/store"
	"github.com/fatflowers/salesreport/internal/models"
	"github.com/fatflowers/salesreport/internal/platform/marketing"
	"github.com/fatflowers/salesreport/internal/testutil"
	cfgpkg "github.com/fatflowers/salesreport/pkg/config"
	"github.com/fatflowers/salesreport/pkg/types"
)

type recordingDispatcher struct {
	events []*marketing.Event
}

func (r *recordingDispatcher) Enqueue(ev *marketing.Event) {
	r.events = append(r.events, ev)
}

type fixture struct {
	svc   *Service
	users *store.UserStore
	db    *gorm.DB
	disp  *recordingDispatcher
	cfg   *cfgpkg.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	users := store.NewUserStore(db)
	log := zap.NewNop().Sugar()

	cfg := &cfgpkg.Config{AutoVerifyOnRegister: true}
	cfg.Quota.FreeLimit = 3
	cfg.Referral.BaseURL = "https://salesreport.example.com"
	cfg.Referral.DefaultReward = 500
	cfg.Verification.TTLMinutes = 10
	cfg.Verification.ResendCooldownS = 60
	cfg.Verification.MaxAttempts = 5
	cfg.PlanMappings = cfgpkg.DefaultPlanMappings()
	cfg.AnnualMarkers = []string{"年額", "annual"}

	disp := &recordingDispatcher{}
	entitlements := entitlement.NewService(users, cfg, log)
	referrals := referral.NewService(db, users, cfg, log)
	verifications := verification.NewService(users, cfg, disp, log)

	return &fixture{
		svc:   NewService(users, cfg, entitlements, referrals, verifications, disp, log),
		users: users,
		db:    db,
		disp:  disp,
		cfg:   cfg,
	}
}

func TestRegister_NewUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.Register(ctx, "New@Example.com", "landing", "")
	require.NoError(t, err)
	require.True(t, result.IsNew)
	require.Equal(t, 0, result.UsageCount)
	require.False(t, result.NeedsVerification)

	user, err := f.users.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	require.Equal(t, types.PlanFree, user.Plan)
	require.True(t, user.EmailVerified)

	require.Len(t, f.disp.events, 1)
	require.Equal(t, "signup", f.disp.events[0].Kind)
	require.Equal(t, "landing", f.disp.events[0].Payload["source"])
}

func TestRegister_RejectsBadEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), "not-an-email", "", "")
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestRegister_ExistingUserIsWelcomeBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedUser(t, f.db, testutil.WithEmail("back@example.com"),
		testutil.WithUsage(2, time.Now()))

	result, err := f.svc.Register(ctx, "back@example.com", "", "")
	require.NoError(t, err)
	require.False(t, result.IsNew)
	require.Equal(t, 2, result.UsageCount)
	// no signup event for returning users
	require.Empty(t, f.disp.events)
}

func TestRegister_AutoVerifyFlipsExistingUnverified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedUser(t, f.db, testutil.WithEmail("old@example.com"),
		func(u *models.User) { u.EmailVerified = false })

	result, err := f.svc.Register(ctx, "old@example.com", "", "")
	require.NoError(t, err)
	require.False(t, result.NeedsVerification)

	user, err := f.users.GetByEmail(ctx, "old@example.com")
	require.NoError(t, err)
	require.True(t, user.EmailVerified)
}

func TestRegister_VerificationFlowWhenAutoVerifyOff(t *testing.T) {
	f := newFixture(t)
	f.cfg.AutoVerifyOnRegister = false
	ctx := context.Background()

	result, err := f.svc.Register(ctx, "strict@example.com", "", "")
	require.NoError(t, err)
	require.True(t, result.NeedsVerification)

	user, err := f.users.GetByEmail(ctx, "strict@example.com")
	require.NoError(t, err)
	require.False(t, user.EmailVerified)
	require.NotNil(t, user.VerificationCode)
}

func TestRegister_WithReferralCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	referrals := referral.NewService(f.db, f.users, f.cfg, zap.NewNop().Sugar())
	testutil.SeedUser(t, f.db, testutil.WithEmail("friend@example.com"))
	code, err := referrals.Code(ctx, "friend@example.com")
	require.NoError(t, err)

	result, err := f.svc.Register(ctx, "invited@example.com", "", code)
	require.NoError(t, err)
	require.True(t, result.IsNew)

	var row models.Referral
	require.NoError(t, f.db.Where("referred_email = ?", "invited@example.com").First(&row).Error)
	require.Equal(t, "friend@example.com", row.ReferrerEmail)

	referrer, err := f.users.GetByEmail(ctx, "friend@example.com")
	require.NoError(t, err)
	require.Equal(t, 1, referrer.ReferralCount)
}

func TestRegister_BadReferralCodeDoesNotFailSignup(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.Register(context.Background(), "solo@example.com", "", "BOGUS999")
	require.NoError(t, err)
	require.True(t, result.IsNew)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedUser(t, f.db, testutil.WithEmail("u@example.com"),
		testutil.WithUsage(2, time.Now()),
		testutil.WithStreak(4, time.Now()),
		func(u *models.User) {
			u.ReferralCount = 1
			u.SalesScore = u.ComputeSalesScore()
		})

	dash, err := f.svc.Dashboard(ctx, "u@example.com")
	require.NoError(t, err)
	require.Equal(t, 2, dash.UsageCount)
	require.Equal(t, 3, dash.Limit)
	require.Equal(t, 1, dash.Remaining)
	require.True(t, dash.CanUse)
	require.Equal(t, 4, dash.StreakCount)
	require.Equal(t, 1, dash.ReferralCount)
	require.Equal(t, 2*10+4*5+1*50, dash.SalesScore)
}

func TestDashboard_UnknownUserGetsZeroView(t *testing.T) {
	f := newFixture(t)
	dash, err := f.svc.Dashboard(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.Equal(t, 0, dash.UsageCount)
	require.Equal(t, 3, dash.Remaining)
	require.True(t, dash.CanUse)
}

func TestHandlePurchase_ProPlanByNameAndAnnualMarker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	plan, err := f.svc.HandlePurchase(ctx, &PurchasePayload{
		Email:         "buyer@example.com",
		ProductName:   "営業AI Pro 年額",
		Amount:        98000,
		TransactionID: "txn-1",
	})
	require.NoError(t, err)
	require.Equal(t, types.PlanPro, plan)

	user, err := f.users.GetByEmail(ctx, "buyer@example.com")
	require.NoError(t, err)
	require.Equal(t, types.PlanPro, user.Plan)
	require.True(t, user.IsAnnual)
	require.Equal(t, types.AccountStatusActive, user.Status)
	require.NotNil(t, user.SubscribedAt)
	require.Equal(t, "txn-1", user.TransactionID)
}

func TestHandlePurchase_AmountThresholdAndUpsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedUser(t, f.db, testutil.WithEmail("existing@example.com"),
		testutil.WithUsage(2, time.Now()))

	plan, err := f.svc.HandlePurchase(ctx, &PurchasePayload{
		Email:       "existing@example.com",
		ProductName: "スタータープラン",
		Amount:      980,
	})
	require.NoError(t, err)
	require.Equal(t, types.PlanBasic, plan)

	user, err := f.users.GetByEmail(ctx, "existing@example.com")
	require.NoError(t, err)
	require.Equal(t, types.PlanBasic, user.Plan)
	require.False(t, user.IsAnnual)
	// usage survives the upsert
	require.Equal(t, 2, user.UsageCount)
}

func TestHandlePurchase_GrantsReferralReward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	referrals := referral.NewService(f.db, f.users, f.cfg, zap.NewNop().Sugar())
	testutil.SeedUser(t, f.db, testutil.WithEmail("friend@example.com"))
	testutil.SeedUser(t, f.db, testutil.WithEmail("buyer@example.com"))
	require.NoError(t, referrals.Record(ctx, "friend@example.com", "buyer@example.com", "FRIE1234"))

	_, err := f.svc.HandlePurchase(ctx, &PurchasePayload{
		Email: "buyer@example.com", ProductName: "Pro", Amount: 9800,
	})
	require.NoError(t, err)

	referrer, err := f.users.GetByEmail(ctx, "friend@example.com")
	require.NoError(t, err)
	require.EqualValues(t, 500, referrer.ReferralCredits)
}

func TestHandleCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedUser(t, f.db, testutil.WithEmail("leaver@example.com"),
		testutil.WithPlan(types.PlanPro))

	require.NoError(t, f.svc.HandleCancel(ctx, &CancelPayload{
		Email:  "leaver@example.com",
		Reason: "too expensive",
	}))

	user, err := f.users.GetByEmail(ctx, "leaver@example.com")
	require.NoError(t, err)
	require.Equal(t, types.PlanFree, user.Plan)
	require.Equal(t, types.AccountStatusCancelled, user.Status)
	require.NotNil(t, user.CancelledAt)
	require.Equal(t, "too expensive", user.CancelReason)
}

func TestHandleCancel_UnknownUserAcknowledged(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.HandleCancel(context.Background(), &CancelPayload{
		Email: "ghost@example.com",
	}))
}

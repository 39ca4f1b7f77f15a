// Package account owns the user lifecycle: registration, the dashboard
// snapshot, and the payment-platform webhooks that move users between plans.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fatflowers/salesreport/internal/app/service/entitlement"
	"github.com/fatflowers/salesreport/internal/app/service/referral"
	"github.com/fatflowers/salesreport/internal/app/service/verification"
	"github.com/fatflowers/salesreport/internal/app/store"
	"github.com/fatflowers/salesreport/internal/models"
	"github.com/fatflowers/salesreport/internal/platform/marketing"
	cfgpkg "github.com/fatflowers/salesreport/pkg/config"
	"github.com/fatflowers/salesreport/pkg/types"
)

var ErrInvalidEmail = errors.New("a valid email address is required")

// marketingSource tags signup webhook payloads for funnel attribution.
const marketingSource = "salesreport-ai"

type Service struct {
	users        *store.UserStore
	cfg          *cfgpkg.Config
	entitlements *entitlement.Service
	referrals    *referral.Service
	verification *verification.Service
	dispatcher   marketing.Dispatcher
	log          *zap.SugaredLogger

	now func() time.Time
}

func NewService(
	users *store.UserStore,
	cfg *cfgpkg.Config,
	entitlements *entitlement.Service,
	referrals *referral.Service,
	verifications *verification.Service,
	dispatcher marketing.Dispatcher,
	log *zap.SugaredLogger,
) *Service {
	return &Service{
		users:        users,
		cfg:          cfg,
		entitlements: entitlements,
		referrals:    referrals,
		verification: verifications,
		dispatcher:   dispatcher,
		log:          log,
		now:          time.Now,
	}
}

// RegisterResult is what the signup endpoint reports back.
type RegisterResult struct {
	IsNew             bool `json:"isNew"`
	UsageCount        int  `json:"usageCount"`
	NeedsVerification bool `json:"needsVerification"`
}

// Register creates the user row on first call and is a cheap no-op welcome
// afterwards. With auto-verification on (the launch configuration) new users
// skip the email code flow and existing unverified users are flipped to
// verified. A referral code supplied at signup records the referrer edge;
// a bad code never fails the registration.
func (s *Service) Register(ctx context.Context, email, source, referralCode string) (*RegisterResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if !existing.EmailVerified && s.cfg.AutoVerifyOnRegister {
			if _, err := s.users.Mutate(ctx, email, func(u *models.User) (map[string]any, error) {
				return map[string]any{"email_verified": true}, nil
			}); err != nil {
				return nil, err
			}
			existing.EmailVerified = true
		}
		count, err := s.entitlements.GetUsageCount(ctx, email)
		if err != nil {
			return nil, err
		}
		return &RegisterResult{
			IsNew:             false,
			UsageCount:        count,
			NeedsVerification: !existing.EmailVerified,
		}, nil
	}

	user := &models.User{
		Email:         email,
		Plan:          types.PlanFree,
		Status:        types.AccountStatusActive,
		LastReset:     s.now(),
		EmailVerified: s.cfg.AutoVerifyOnRegister,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Infow("user registered", "email", email, "source", source)

	if referralCode != "" {
		s.recordSignupReferral(ctx, email, referralCode)
	}

	if !s.cfg.AutoVerifyOnRegister {
		if err := s.verification.Send(ctx, email); err != nil {
			// registration stands; the user can request a resend
			s.log.Warnw("failed to send verification code", "email", email, "err", err)
		}
	}

	payload := map[string]any{"email": email, "source": marketingSource}
	if source != "" {
		payload["source"] = source
	}
	s.dispatcher.Enqueue(&marketing.Event{Kind: "signup", Payload: payload})

	return &RegisterResult{
		IsNew:             true,
		UsageCount:        0,
		NeedsVerification: !s.cfg.AutoVerifyOnRegister,
	}, nil
}

func (s *Service) recordSignupReferral(ctx context.Context, email, code string) {
	owner, err := s.referrals.Validate(ctx, code)
	if err != nil {
		s.log.Infow("signup referral code rejected", "email", email, "code", code, "err", err)
		return
	}
	if err := s.referrals.Record(ctx, owner.Email, email, owner.ReferralCode); err != nil {
		s.log.Warnw("failed to record signup referral",
			"email", email, "referrer", owner.Email, "err", err)
	}
}

// Dashboard is the combined per-user stats view.
type Dashboard struct {
	UsageCount    int        `json:"usageCount"`
	Limit         int        `json:"limit"`
	Remaining     int        `json:"remaining"`
	CanUse        bool       `json:"canUse"`
	Plan          types.Plan `json:"plan"`
	StreakCount   int        `json:"streak"`
	SalesScore    int        `json:"salesScore"`
	ReferralCount int        `json:"referralCount"`
	EmailVerified bool       `json:"emailVerified"`
}

// Dashboard assembles the usage view the client polls. Unknown users get the
// zero-usage view so the UI renders before the first registration completes.
func (s *Service) Dashboard(ctx context.Context, email string) (*Dashboard, error) {
	limit := s.entitlements.FreeLimit()

	user, err := s.entitlements.Snapshot(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return &Dashboard{Limit: limit, Remaining: limit, CanUse: true, Plan: types.PlanFree}, nil
	}
	if err != nil {
		return nil, err
	}

	remaining := limit - user.UsageCount
	if remaining < 0 || !user.Plan.Metered() {
		remaining = 0
	}
	canUse := !user.Plan.Metered() || user.UsageCount < limit

	return &Dashboard{
		UsageCount:    user.UsageCount,
		Limit:         limit,
		Remaining:     remaining,
		CanUse:        canUse,
		Plan:          user.Plan,
		StreakCount:   user.StreakCount,
		SalesScore:    user.SalesScore,
		ReferralCount: user.ReferralCount,
		EmailVerified: user.EmailVerified,
	}, nil
}

// PurchasePayload is the payment-platform purchase callback body.
type PurchasePayload struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	ProductName   string `json:"product_name"`
	ProductID     string `json:"product_id"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transaction_id"`
}

// HandlePurchase upserts the purchased plan onto the user row and grants the
// referral reward when the buyer was referred. The reward grant is
// best-effort: its failure never fails the purchase recording.
func (s *Service) HandlePurchase(ctx context.Context, payload *PurchasePayload) (types.Plan, error) {
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return "", ErrInvalidEmail
	}

	plan, annual := s.cfg.ResolvePlan(payload.ProductName, payload.Amount)
	now := s.now()

	user := &models.User{
		Email:         email,
		Name:          payload.Name,
		Plan:          plan,
		Status:        types.AccountStatusActive,
		IsAnnual:      annual,
		SubscribedAt:  &now,
		TransactionID: payload.TransactionID,
		ProductName:   payload.ProductName,
		Amount:        payload.Amount,
		LastReset:     now,
	}
	err := s.users.Upsert(ctx, user, []string{
		"name", "plan", "status", "is_annual", "subscribed_at",
		"transaction_id", "product_name", "amount",
	})
	if err != nil {
		return "", err
	}
	s.log.Infow("purchase recorded",
		"email", email, "plan", plan, "amount", payload.Amount, "annual", annual)

	if err := s.referrals.GrantReward(ctx, email); err != nil {
		s.log.Errorw("referral reward grant failed", "email", email, "err", err)
	}

	return plan, nil
}

// CancelPayload is the payment-platform cancellation callback body.
type CancelPayload struct {
	Email       string `json:"email"`
	ProductName string `json:"product_name"`
	Reason      string `json:"reason"`
}

// HandleCancel moves the user back to the free plan. Cancellation never
// deletes the row; an unknown email is acknowledged without a write so the
// payment platform does not retry forever.
func (s *Service) HandleCancel(ctx context.Context, payload *CancelPayload) error {
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return ErrInvalidEmail
	}

	now := s.now()
	_, err := s.users.Mutate(ctx, email, func(u *models.User) (map[string]any, error) {
		return map[string]any{
			"plan":          types.PlanFree,
			"status":        types.AccountStatusCancelled,
			"cancelled_at":  now,
			"cancel_reason": payload.Reason,
		}, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		s.log.Warnw("cancel webhook for unknown user", "email", email)
		return nil
	}
	if err != nil {
		return err
	}

	s.log.Infow("subscription cancelled", "email", email, "reason", payload.Reason)
	return nil
}

// Package referral maintains the referral ledger: per-user codes, the
// referrer→referred edges created at signup, and the one-time reward grant at
// the referred user's first paid conversion.
package referral

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/salesreport/internal/app/store"
	"github.com/fatflowers/salesreport/internal/models"
	cfgpkg "github.com/fatflowers/salesreport/pkg/config"
	"github.com/fatflowers/salesreport/pkg/tool"
	"github.com/fatflowers/salesreport/pkg/types"
)

var (
	ErrSelfReferral    = errors.New("cannot refer yourself")
	ErrAlreadyReferred = errors.New("email already has a referrer")
	ErrInvalidCode     = errors.New("referral code is not valid")
)

const (
	suffixDigits = 4
	// codeRetries bounds the unique-insert loop when a generated code
	// collides with an existing one.
	codeRetries = 5
)

type Service struct {
	db    *gorm.DB
	users *store.UserStore
	cfg   *cfgpkg.Config
	log   *zap.SugaredLogger
}

func NewService(db *gorm.DB, users *store.UserStore, cfg *cfgpkg.Config, log *zap.SugaredLogger) *Service {
	return &Service{db: db, users: users, cfg: cfg, log: log}
}

// Code returns the user's referral code, generating and persisting one on
// first request. Codes are PREFIX+NNNN; on a unique-index collision a new
// random suffix is drawn, up to codeRetries times.
func (s *Service) Code(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user.ReferralCode != "" {
		return user.ReferralCode, nil
	}

	prefix := tool.ReferralPrefix(email)
	var lastErr error
	for i := 0; i < codeRetries; i++ {
		code := prefix + tool.RandomDigits(suffixDigits)
		err := s.users.UpdateVersioned(ctx, user, map[string]any{"referral_code": code})
		if err == nil {
			return code, nil
		}
		lastErr = err
		if errors.Is(err, store.ErrVersionConflict) {
			// someone else may have assigned a code concurrently
			user, err = s.users.GetByEmail(ctx, email)
			if err != nil {
				return "", err
			}
			if user.ReferralCode != "" {
				return user.ReferralCode, nil
			}
			continue
		}
		// unique-index violation on referral_code: retry with a new suffix
		user, err = s.users.GetByEmail(ctx, email)
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("failed to assign referral code after %d attempts: %w", codeRetries, lastErr)
}

// Link renders the shareable signup URL for a code.
func (s *Service) Link(code string) string {
	base := strings.TrimRight(s.cfg.Referral.BaseURL, "/")
	return fmt.Sprintf("%s/register?ref=%s", base, code)
}

// Validate resolves a code to its owner. Lookup is case-insensitive; codes
// shorter than the prefix+suffix shape are rejected without a query.
func (s *Service) Validate(ctx context.Context, code string) (*models.User, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < tool.ReferralPrefixLen+suffixDigits {
		return nil, ErrInvalidCode
	}
	user, err := s.users.GetByReferralCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Record creates the registered edge at signup-with-code time and bumps the
// referrer's count. The unique index on referred_email makes the first
// referrer win; later attempts surface ErrAlreadyReferred.
func (s *Service) Record(ctx context.Context, referrerEmail, referredEmail, code string) error {
	referrerEmail = strings.ToLower(strings.TrimSpace(referrerEmail))
	referredEmail = strings.ToLower(strings.TrimSpace(referredEmail))
	if referrerEmail == referredEmail {
		return ErrSelfReferral
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Referral{}).
		Where("referred_email = ?", referredEmail).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return ErrAlreadyReferred
	}

	row := &models.Referral{
		ReferrerEmail: referrerEmail,
		ReferredEmail: referredEmail,
		Code:          code,
		Status:        types.ReferralStatusRegistered,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		// lost the race against a concurrent signup with another code
		return ErrAlreadyReferred
	}

	_, err := s.users.Mutate(ctx, referrerEmail, func(u *models.User) (map[string]any, error) {
		u.ReferralCount++
		return map[string]any{
			"referral_count": u.ReferralCount,
			"sales_score":    u.ComputeSalesScore(),
		}, nil
	})
	if err != nil {
		return err
	}

	if _, err := s.users.Mutate(ctx, referredEmail, func(u *models.User) (map[string]any, error) {
		return map[string]any{"referred_by": code}, nil
	}); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	s.log.Infow("referral recorded", "referrer", referrerEmail, "referred", referredEmail, "code", code)
	return nil
}

// GrantReward converts the referral for a referred email and credits the
// referrer. Repeated webhook deliveries are harmless: an already-converted
// row, or no row at all, is a no-op.
func (s *Service) GrantReward(ctx context.Context, referredEmail string) error {
	referredEmail = strings.ToLower(strings.TrimSpace(referredEmail))

	var row models.Referral
	err := s.db.WithContext(ctx).Where("referred_email = ?", referredEmail).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if row.Status == types.ReferralStatusConverted {
		return nil
	}

	reward := s.rewardAmount(ctx)
	now := time.Now()

	// The conditional update is the idempotency gate under concurrent
	// deliveries: only one caller flips registered→converted.
	res := s.db.WithContext(ctx).Model(&models.Referral{}).
		Where("id = ? AND status = ?", row.ID, types.ReferralStatusRegistered).
		Updates(map[string]any{
			"status":        types.ReferralStatusConverted,
			"reward_amount": reward,
			"converted_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	_, err = s.users.Mutate(ctx, row.ReferrerEmail, func(u *models.User) (map[string]any, error) {
		return map[string]any{
			"referral_credits":        u.ReferralCredits + reward,
			"total_referral_earnings": u.TotalReferralEarnings + reward,
		}, nil
	})
	if err != nil {
		return err
	}

	s.log.Infow("referral reward granted",
		"referrer", row.ReferrerEmail, "referred", referredEmail, "reward", reward)
	return nil
}

// History lists a referrer's edges newest first, with running totals for the
// referral dashboard.
func (s *Service) History(ctx context.Context, email string) ([]models.Referral, *Totals, error) {
	var rows []models.Referral
	err := s.db.WithContext(ctx).
		Where("referrer_email = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	totals := &Totals{Registered: len(rows)}
	for _, r := range rows {
		if r.Status == types.ReferralStatusConverted {
			totals.Converted++
			totals.Earned += r.RewardAmount
		}
	}
	return rows, totals, nil
}

// Totals summarizes a referrer's ledger.
type Totals struct {
	Registered int   `json:"registered"`
	Converted  int   `json:"converted"`
	Earned     int64 `json:"earned"`
}

// rewardAmount reads the mutable settings row, falling back to the configured
// default when no row exists.
func (s *Service) rewardAmount(ctx context.Context) int64 {
	var settings models.ReferralSettings
	err := s.db.WithContext(ctx).First(&settings).Error
	if err != nil || settings.RewardAmount <= 0 {
		return s.cfg.Referral.DefaultReward
	}
	return settings.RewardAmount
}

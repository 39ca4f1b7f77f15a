// Package entitlement meters free-tier usage against the monthly quota.
// Counters reset lazily on the first read or write after a calendar-month
// rollover; nothing schedules resets in the background.
package entitlement

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fatflowers/salesreport/internal/app/store"
	"github.com/fatflowers/salesreport/internal/models"
	cfgpkg "github.com/fatflowers/salesreport/pkg/config"
)

// ErrLimitReached signals an exhausted free-tier quota. Handlers surface it
// distinctly from validation failures so the client can offer an upgrade.
var ErrLimitReached = errors.New("monthly free limit reached")

type Service struct {
	users *store.UserStore
	cfg   *cfgpkg.Config
	log   *zap.SugaredLogger

	// now is swapped in tests to simulate month rollovers
	now func() time.Time
}

func NewService(users *store.UserStore, cfg *cfgpkg.Config, log *zap.SugaredLogger) *Service {
	return &Service{users: users, cfg: cfg, log: log, now: time.Now}
}

func (s *Service) FreeLimit() int {
	return s.cfg.Quota.FreeLimit
}

// GetUsageCount returns the user's usage count for the current calendar
// month, resetting the stored counter first if the month rolled over.
// Unknown users count as zero, matching the pre-registration UI flow.
func (s *Service) GetUsageCount(ctx context.Context, email string) (int, error) {
	user, err := s.rolloverAware(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return user.UsageCount, nil
}

// IncrementUsage charges one billable action. Free-plan users at or over the
// limit get ErrLimitReached and no write happens. Paid plans bypass the
// counter check but still record usage (the sales score depends on it).
func (s *Service) IncrementUsage(ctx context.Context, email string) (int, error) {
	user, err := s.users.Mutate(ctx, email, func(u *models.User) (map[string]any, error) {
		fields := map[string]any{}
		count := u.UsageCount
		now := s.now()
		if !u.SameCalendarMonth(now) {
			count = 0
			fields["last_reset"] = now
		}
		if u.Plan.Metered() && count >= s.cfg.Quota.FreeLimit {
			return nil, ErrLimitReached
		}
		fields["usage_count"] = count + 1
		return fields, nil
	})
	if err != nil {
		return 0, err
	}
	return user.UsageCount, nil
}

// CanUse reports whether the user may perform another billable action this
// month. Paid plans always can.
func (s *Service) CanUse(ctx context.Context, email string) (bool, error) {
	user, err := s.rolloverAware(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if !user.Plan.Metered() {
		return true, nil
	}
	return user.UsageCount < s.cfg.Quota.FreeLimit, nil
}

// Snapshot returns the rollover-aware user row for dashboard reads.
func (s *Service) Snapshot(ctx context.Context, email string) (*models.User, error) {
	return s.rolloverAware(ctx, email)
}

func (s *Service) rolloverAware(ctx context.Context, email string) (*models.User, error) {
	return s.users.Mutate(ctx, email, func(u *models.User) (map[string]any, error) {
		now := s.now()
		if u.SameCalendarMonth(now) {
			return nil, nil
		}
		s.log.Infow("monthly usage reset", "email", u.Email, "previous_count", u.UsageCount)
		return map[string]any{"usage_count": 0, "last_reset": now}, nil
	})
}

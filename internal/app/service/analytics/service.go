// Package analytics computes the admin revenue views: plan distribution,
// lifetime value, recurring revenue, churn, and monthly cohorts. Everything is
// derived on demand from the user table; nothing is precomputed.
package analytics

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/salesreport/internal/models"
	cfgpkg "github.com/fatflowers/salesreport/pkg/config"
	"github.com/fatflowers/salesreport/pkg/types"
)

// userListLimit caps the admin user listing.
const userListLimit = 100

type Service struct {
	db  *gorm.DB
	cfg *cfgpkg.Config
	log *zap.SugaredLogger

	now func() time.Time
}

func NewService(db *gorm.DB, cfg *cfgpkg.Config, log *zap.SugaredLogger) *Service {
	return &Service{db: db, cfg: cfg, log: log, now: time.Now}
}

// Overview is the whole-business summary.
type Overview struct {
	TotalUsers      int     `json:"totalUsers"`
	FreeUsers       int     `json:"freeUsers"`
	BasicUsers      int     `json:"basicUsers"`
	ProUsers        int     `json:"proUsers"`
	EnterpriseUsers int     `json:"enterpriseUsers"`
	TotalLTV        int64   `json:"totalLTV"`
	AverageLTV      float64 `json:"averageLTV"`
	MRR             int64   `json:"mrr"`
	ARR             int64   `json:"arr"`
	ChurnRate       float64 `json:"churnRate"`
	ReferralCount   int     `json:"referralCount"`
}

func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	users, err := s.allUsers(ctx)
	if err != nil {
		return nil, err
	}

	byPlan := lo.CountValuesBy(users, func(u models.User) types.Plan { return u.Plan })
	stats := &Overview{
		TotalUsers:      len(users),
		FreeUsers:       byPlan[types.PlanFree],
		BasicUsers:      byPlan[types.PlanBasic],
		ProUsers:        byPlan[types.PlanPro],
		EnterpriseUsers: byPlan[types.PlanEnterprise],
	}

	stats.TotalLTV = lo.SumBy(users, func(u models.User) int64 { return s.LTV(&u) })
	if stats.TotalUsers > 0 {
		stats.AverageLTV = float64(stats.TotalLTV) / float64(stats.TotalUsers)
	}

	stats.MRR = lo.SumBy(users, func(u models.User) int64 { return s.cfg.MonthlyPrice(u.Plan) })
	stats.ARR = stats.MRR * 12

	cancelled := lo.CountBy(users, func(u models.User) bool {
		return u.Status == types.AccountStatusCancelled
	})
	// churn is measured against everyone who ever paid
	paid := stats.BasicUsers + stats.ProUsers + stats.EnterpriseUsers + cancelled
	if paid > 0 {
		stats.ChurnRate = float64(cancelled) / float64(paid) * 100
	}

	stats.ReferralCount = lo.SumBy(users, func(u models.User) int { return u.ReferralCount })

	return stats, nil
}

// UserWithLTV is one admin-listing row.
type UserWithLTV struct {
	models.User
	LTV int64 `json:"ltv"`
}

// Users lists the newest accounts with their computed LTV.
func (s *Service) Users(ctx context.Context) ([]UserWithLTV, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Order("created_at DESC").
		Limit(userListLimit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return lo.Map(users, func(u models.User, _ int) UserWithLTV {
		return UserWithLTV{User: u, LTV: s.LTV(&u)}
	}), nil
}

// Cohort is one acquisition month's outcome counts.
type Cohort struct {
	Acquired  int `json:"acquired"`
	Retained  int `json:"retained"`
	Converted int `json:"converted"`
}

// Cohorts groups users by signup month (YYYY-MM) and counts how many are
// still active and how many converted to a paid plan.
func (s *Service) Cohorts(ctx context.Context) (map[string]*Cohort, error) {
	users, err := s.allUsers(ctx)
	if err != nil {
		return nil, err
	}

	cohorts := map[string]*Cohort{}
	for _, u := range users {
		month := u.CreatedAt.Format("2006-01")
		c, ok := cohorts[month]
		if !ok {
			c = &Cohort{}
			cohorts[month] = c
		}
		c.Acquired++
		if u.Status == types.AccountStatusActive {
			c.Retained++
		}
		if !u.Plan.Metered() {
			c.Converted++
		}
	}
	return cohorts, nil
}

// LTV estimates one user's lifetime value: monthly price times subscribed
// months (annual plans count a full year), plus one month of value per
// successful referral.
func (s *Service) LTV(u *models.User) int64 {
	basePrice := s.cfg.MonthlyPrice(u.Plan)

	months := int64(1)
	if u.SubscribedAt != nil {
		elapsed := int64(s.now().Sub(*u.SubscribedAt) / (30 * 24 * time.Hour))
		if elapsed > months {
			months = elapsed
		}
	}
	if u.IsAnnual {
		months = 12
	}

	return basePrice*months + int64(u.ReferralCount)*basePrice
}

func (s *Service) allUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Model(&models.User{}).Find(&users).Error
	return users, err
}

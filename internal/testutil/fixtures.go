package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/fatflowers/salesreport/internal/models"
	"github.com/fatflowers/salesreport/pkg/types"
)

// SeedUser inserts a user row with sensible defaults, applying opts on top.
func SeedUser(t *testing.T, db *gorm.DB, opts ...func(*models.User)) *models.User {
	t.Helper()

	user := &models.User{
		Email:         fmt.Sprintf("user_%d@example.com", time.Now().UnixNano()),
		Plan:          types.PlanFree,
		Status:        types.AccountStatusActive,
		LastReset:     time.Now(),
		EmailVerified: true,
	}
	for _, opt := range opts {
		opt(user)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func WithEmail(email string) func(*models.User) {
	return func(u *models.User) { u.Email = email }
}

func WithPlan(plan types.Plan) func(*models.User) {
	return func(u *models.User) { u.Plan = plan }
}

func WithUsage(count int, lastReset time.Time) func(*models.User) {
	return func(u *models.User) {
		u.UsageCount = count
		u.LastReset = lastReset
	}
}

func WithStreak(streak int, lastUsed time.Time) func(*models.User) {
	return func(u *models.User) {
		u.StreakCount = streak
		u.LastUsedAt = &lastUsed
	}
}

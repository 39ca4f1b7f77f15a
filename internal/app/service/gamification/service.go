// Package gamification maintains the usage streak and the derived sales
// score. Both update together on every billable action.
package gamification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fatflowers/salesreport/internal/app/store"
	"github.com/fatflowers/salesreport/internal/models"
)

type Service struct {
	users *store.UserStore
	log   *zap.SugaredLogger

	now func() time.Time
}

func NewService(users *store.UserStore, log *zap.SugaredLogger) *Service {
	return &Service{users: users, log: log, now: time.Now}
}

// Result reports the state after a Touch.
type Result struct {
	Streak   int  `json:"streak"`
	Score    int  `json:"salesScore"`
	IsNewDay bool `json:"isNewDay"`
}

// Touch records one qualifying action. The streak advances at calendar-day
// granularity:
//
//	no prior use        -> 1
//	same day            -> unchanged
//	exactly one day gap -> +1
//	two or more days    -> back to 1
//
// The sales score is recomputed from its defining formula and stored on every
// call, so an out-of-band correction to any input field self-heals here.
// last_used_at is only written on a new-day transition.
func (s *Service) Touch(ctx context.Context, email string) (*Result, error) {
	var res Result
	_, err := s.users.Mutate(ctx, email, func(u *models.User) (map[string]any, error) {
		now := s.now()
		streak, newDay := nextStreak(u, now)

		scored := *u
		scored.StreakCount = streak
		score := scored.ComputeSalesScore()

		res = Result{Streak: streak, Score: score, IsNewDay: newDay}

		fields := map[string]any{"sales_score": score}
		if newDay {
			fields["streak_count"] = streak
			fields["last_used_at"] = now
		}
		return fields, nil
	})
	if err != nil {
		return nil, err
	}
	if res.IsNewDay {
		s.log.Infow("streak advanced", "email", email, "streak", res.Streak)
	}
	return &res, nil
}

func nextStreak(u *models.User, now time.Time) (streak int, newDay bool) {
	if u.LastUsedAt == nil {
		return 1, true
	}

	today := truncateDay(now)
	lastDay := truncateDay(*u.LastUsedAt)
	gap := int(today.Sub(lastDay).Hours() / 24)

	switch {
	case gap == 0:
		return u.StreakCount, false
	case gap == 1:
		return u.StreakCount + 1, true
	default:
		return 1, true
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

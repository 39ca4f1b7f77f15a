// Package verification implements the email verification code flow:
// unverified → code sent → verified. Codes are single-use six-digit numbers
// with a fixed validity window; a resend replaces the outstanding code.
package verification

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fatflowers/salesreport/internal/app/store"
	"github.com/fatflowers/salesreport/internal/models"
	"github.com/fatflowers/salesreport/internal/platform/marketing"
	cfgpkg "github.com/fatflowers/salesreport/pkg/config"
	"github.com/fatflowers/salesreport/pkg/tool"
)

var (
	// ErrCodeExpired and ErrCodeMismatch are distinct so clients can tell
	// "request a new code" apart from "you typed it wrong".
	ErrCodeExpired  = errors.New("verification code expired")
	ErrCodeMismatch = errors.New("verification code does not match")
	ErrNoCode       = errors.New("no verification code outstanding")
	// ErrResendCooldown throttles repeated sends.
	ErrResendCooldown = errors.New("verification code was sent recently")
	// ErrTooManyAttempts caps guesses against one issued code.
	ErrTooManyAttempts = errors.New("too many failed attempts, request a new code")
)

const codeLength = 6

type Service struct {
	users      *store.UserStore
	cfg        *cfgpkg.Config
	dispatcher marketing.Dispatcher
	log        *zap.SugaredLogger

	now func() time.Time
}

func NewService(users *store.UserStore, cfg *cfgpkg.Config, dispatcher marketing.Dispatcher, log *zap.SugaredLogger) *Service {
	return &Service{users: users, cfg: cfg, dispatcher: dispatcher, log: log, now: time.Now}
}

func (s *Service) ttl() time.Duration {
	return time.Duration(s.cfg.Verification.TTLMinutes) * time.Minute
}

func (s *Service) cooldown() time.Duration {
	return time.Duration(s.cfg.Verification.ResendCooldownS) * time.Second
}

// Send issues a fresh code for the email, creating the user row when absent.
// Any outstanding code is invalidated immediately. Delivery goes through the
// marketing webhook channel; the code is also logged for operator support.
func (s *Service) Send(ctx context.Context, email string) error {
	code := tool.RandomDigits(codeLength)
	now := s.now()
	expires := now.Add(s.ttl())

	_, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		user := &models.User{
			Email:                 email,
			LastReset:             now,
			VerificationCode:      &code,
			VerificationExpiresAt: &expires,
			VerificationSentAt:    &now,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		s.deliver(email, code)
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.users.Mutate(ctx, email, func(u *models.User) (map[string]any, error) {
		if u.VerificationSentAt != nil && now.Sub(*u.VerificationSentAt) < s.cooldown() {
			return nil, ErrResendCooldown
		}
		return map[string]any{
			"verification_code":       code,
			"verification_expires_at": expires,
			"verification_sent_at":    now,
			"verification_attempts":   0,
			"email_verified":          false,
		}, nil
	})
	if err != nil {
		return err
	}

	s.deliver(email, code)
	return nil
}

// Confirm validates the code. Expiry is checked before the match so an
// expired-but-correct code still reports ErrCodeExpired. Success clears the
// stored code, making it single-use.
func (s *Service) Confirm(ctx context.Context, email, code string) error {
	var confirmErr error
	_, err := s.users.Mutate(ctx, email, func(u *models.User) (map[string]any, error) {
		confirmErr = nil
		if u.VerificationCode == nil {
			confirmErr = ErrNoCode
			return nil, nil
		}
		if u.VerificationAttempts >= s.cfg.Verification.MaxAttempts {
			confirmErr = ErrTooManyAttempts
			return nil, nil
		}
		if u.VerificationExpiresAt != nil && u.VerificationExpiresAt.Before(s.now()) {
			confirmErr = ErrCodeExpired
			return nil, nil
		}
		if *u.VerificationCode != code {
			confirmErr = ErrCodeMismatch
			return map[string]any{"verification_attempts": u.VerificationAttempts + 1}, nil
		}
		return map[string]any{
			"email_verified":          true,
			"verification_code":       nil,
			"verification_expires_at": nil,
			"verification_attempts":   0,
		}, nil
	})
	if err != nil {
		return err
	}
	if confirmErr != nil {
		return confirmErr
	}
	s.log.Infow("email verified", "email", email)
	return nil
}

// IsVerified reports the verification flag; unknown users are unverified.
func (s *Service) IsVerified(ctx context.Context, email string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.EmailVerified, nil
}

func (s *Service) deliver(email, code string) {
	s.dispatcher.Enqueue(&marketing.Event{
		Kind: "verification",
		Payload: map[string]any{
			"email":             email,
			"verification_code": code,
		},
	})
	// operator fallback when no delivery channel is configured
	s.log.Infow("verification code issued", "email", email, "code", code)
}

package models

import (
	"time"

	"github.com/fatflowers/salesreport/pkg/types"
)

// User is the entitlement row, one per email address. All usage, plan,
// verification, streak and referral bookkeeping hangs off this record.
//
// Version guards every read-modify-write: writers load the row, compute the
// new state, and issue a conditional UPDATE on (email, version). A conflict
// means another request won the race and the writer retries from a fresh read.
type User struct {
	ID    int64  `gorm:"primaryKey" json:"id"`
	Email string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name  string `gorm:"size:255" json:"name,omitempty"`

	Plan         types.Plan          `gorm:"size:20;default:free" json:"plan"`
	Status       types.AccountStatus `gorm:"size:20;default:active" json:"status"`
	IsAnnual     bool                `gorm:"default:false" json:"is_annual"`
	SubscribedAt *time.Time          `json:"subscribed_at,omitempty"`
	CancelledAt  *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason string              `gorm:"size:255" json:"cancel_reason,omitempty"`
	// Last purchase payload details, kept for support lookups.
	TransactionID string `gorm:"size:100" json:"transaction_id,omitempty"`
	ProductName   string `gorm:"size:255" json:"product_name,omitempty"`
	Amount        int64  `json:"amount,omitempty"`

	UsageCount int       `gorm:"default:0" json:"usage_count"`
	LastReset  time.Time `json:"last_reset"`

	EmailVerified         bool       `gorm:"default:false" json:"email_verified"`
	VerificationCode      *string    `gorm:"size:10" json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`
	VerificationSentAt    *time.Time `json:"-"`
	VerificationAttempts  int        `gorm:"default:0" json:"-"`

	StreakCount int        `gorm:"default:0" json:"streak_count"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	SalesScore  int        `gorm:"default:0" json:"sales_score"`

	// default:null keeps unassigned codes out of the unique index.
	ReferralCode          string  `gorm:"size:20;uniqueIndex;default:null" json:"referral_code,omitempty"`
	ReferredBy            string  `gorm:"size:20" json:"referred_by,omitempty"`
	ReferralCount         int     `gorm:"default:0" json:"referral_count"`
	ReferralCredits       int64   `gorm:"default:0" json:"referral_credits"`
	TotalReferralEarnings int64   `gorm:"default:0" json:"total_referral_earnings"`

	Version   int64     `gorm:"default:0" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "salesreport_users"
}

// SameCalendarMonth reports whether the last usage reset falls in the current
// calendar month and year. Counter resets are lazy; see entitlement.Service.
func (u *User) SameCalendarMonth(now time.Time) bool {
	return u.LastReset.Year() == now.Year() && u.LastReset.Month() == now.Month()
}

// ComputeSalesScore is the single definition of the derived score. The stored
// sales_score column is always overwritten with this value, never incremented.
func (u *User) ComputeSalesScore() int {
	return u.UsageCount*10 + u.StreakCount*5 + u.ReferralCount*50
}

package models

import (
	"time"

	"github.com/fatflowers/salesreport/pkg/types"
)

// Referral is one referrer→referred edge. A referred email can appear at most
// once (first referrer wins); the row transitions registered→converted exactly
// once, at the referred user's first paid purchase.
type Referral struct {
	ID            int64                `gorm:"primaryKey" json:"id"`
	ReferrerEmail string               `gorm:"size:255;not null;index" json:"referrer_email"`
	ReferredEmail string               `gorm:"size:255;not null;uniqueIndex" json:"referred_email"`
	Code          string               `gorm:"size:20;not null" json:"code"`
	Status        types.ReferralStatus `gorm:"size:20;default:registered" json:"status"`
	RewardAmount  int64                `gorm:"default:0" json:"reward_amount"`
	ConvertedAt   *time.Time           `json:"converted_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func (Referral) TableName() string {
	return "salesreport_referrals"
}

package models

import "time"

// ReferralSettings is a single mutable row holding the reward amount granted
// per conversion. When the row is absent the configured default applies.
type ReferralSettings struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	RewardAmount int64     `gorm:"not null" json:"reward_amount"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ReferralSettings) TableName() string {
	return "salesreport_referral_settings"
}

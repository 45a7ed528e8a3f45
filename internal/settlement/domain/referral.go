package domain

import "time"

type ReferralCode struct {
	ID          int64
	Code        string `gorm:"uniqueIndex:uniq_code;size:32;not null"`
	OwnerUserID int64  `gorm:"index;not null"`
	IsActive    bool   `gorm:"not null"`
	CreatedAt   time.Time
}

func (ReferralCode) TableName() string {
	return "referral_codes"
}

type ReferralStats struct {
	UserID      int64 `gorm:"primaryKey;autoIncrement:false"`
	InviteCount int64 `gorm:"not null;default:0"`
	UpdatedAt   time.Time
}

func (ReferralStats) TableName() string {
	return "referral_stats"
}

func (s ReferralStats) Tier() Tier { return TierFor(s.InviteCount) }

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyRewardClaim proves the flat daily reward was granted for
// (UserID, ClaimDate). ClaimDate is always a UTC midnight; the composite
// unique index is what makes a second claim for the same day fail.
type DailyRewardClaim struct {
	ID        int64
	UserID    int64           `gorm:"uniqueIndex:uniq_daily_user_day;not null"`
	ClaimDate time.Time       `gorm:"uniqueIndex:uniq_daily_user_day;not null"`
	ClaimedAt time.Time       `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(36,18);not null"`
}

func (DailyRewardClaim) TableName() string {
	return "daily_reward_claims"
}

// RandomRewardClaim is the same guard for the random reward. It lives in its
// own table so both rewards can be claimed on the same day.
type RandomRewardClaim struct {
	ID        int64
	UserID    int64           `gorm:"uniqueIndex:uniq_random_user_day;not null"`
	ClaimDate time.Time       `gorm:"uniqueIndex:uniq_random_user_day;not null"`
	ClaimedAt time.Time       `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(36,18);not null"`
}

func (RandomRewardClaim) TableName() string {
	return "random_reward_claims"
}

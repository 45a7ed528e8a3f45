package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the account aggregate. Balance is changed only through the
// relative updates of the settlement and reward paths, never assigned.
type User struct {
	ID               int64           `json:"id"`
	Email            string          `gorm:"uniqueIndex:uniq_email;size:100" json:"email"`
	Balance          decimal.Decimal `gorm:"type:decimal(36,18);not null;default:0" json:"balance"`
	Role             Role            `gorm:"not null;default:0" json:"role"`
	ReferralCode     *string         `gorm:"uniqueIndex:uniq_referral_code;size:32" json:"referral_code,omitempty"`
	FirstDepositAt   *time.Time      `json:"first_deposit_at,omitempty"`
	LastWithdrawalAt *time.Time      `json:"last_withdrawal_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

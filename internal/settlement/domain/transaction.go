package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deposit is a user request to add funds, settled by an admin.
type Deposit struct {
	ID          int64           `json:"id"`
	UserID      int64           `gorm:"index;not null" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"amount"`
	Status      TxStatus        `gorm:"index;not null;default:0" json:"status"`
	ToAddress   string          `gorm:"size:128" json:"to_address"`
	TxID        string          `gorm:"column:tx_id;size:128" json:"tx_id"`
	EffectiveAt *time.Time      `json:"effective_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Deposit) TableName() string {
	return "deposits"
}

// Withdrawal is a user request to take funds out. Fee and NetAmount are set
// when it is approved.
type Withdrawal struct {
	ID          int64           `json:"id"`
	UserID      int64           `gorm:"index;not null" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"amount"`
	Fee         decimal.Decimal `gorm:"type:decimal(36,18);not null;default:0" json:"fee"`
	NetAmount   decimal.Decimal `gorm:"type:decimal(36,18);not null;default:0" json:"net_amount"`
	Status      TxStatus        `gorm:"index;not null;default:0" json:"status"`
	ToAddress   string          `gorm:"size:128" json:"to_address"`
	TxID        string          `gorm:"column:tx_id;size:128" json:"tx_id"`
	EffectiveAt *time.Time      `json:"effective_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}

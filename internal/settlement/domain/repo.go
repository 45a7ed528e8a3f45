package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Transactor runs fn in one database transaction. Repository calls made with
// the ctx handed to fn join that transaction; returning an error from fn
// rolls everything back.
type Transactor interface {
	Transaction(ctx context.Context, fn func(txCtx context.Context) error) error
}

type UserRepo interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	// CreditBalance adds amount to the balance in place (balance = balance + ?).
	CreditBalance(ctx context.Context, uid int64, amount decimal.Decimal) error
	// DebitBalance subtracts amount in place, refusing to go below zero.
	DebitBalance(ctx context.Context, uid int64, amount decimal.Decimal) error
	// MarkFirstDeposit sets first_deposit_at only if it is still empty.
	MarkFirstDeposit(ctx context.Context, uid int64, at time.Time) error
	MarkWithdrawal(ctx context.Context, uid int64, at time.Time) error
}

type DepositRepo interface {
	CreateDeposit(ctx context.Context, d *Deposit) error
	GetDeposit(ctx context.Context, id int64) (*Deposit, error)
	// TransitionDeposit moves a PENDING deposit to status; any other current
	// status is an InvalidState error.
	TransitionDeposit(ctx context.Context, id int64, status TxStatus, at time.Time) error
	ListDepositsByStatus(ctx context.Context, status TxStatus, page, limit int) ([]*Deposit, error)
}

type WithdrawalRepo interface {
	CreateWithdrawal(ctx context.Context, w *Withdrawal) error
	GetWithdrawal(ctx context.Context, id int64) (*Withdrawal, error)
	// TransitionWithdrawal moves a PENDING withdrawal to status and records the
	// fee split. Same InvalidState rule as deposits.
	TransitionWithdrawal(ctx context.Context, id int64, status TxStatus, fee, net decimal.Decimal, at time.Time) error
	ListWithdrawalsByStatus(ctx context.Context, status TxStatus, page, limit int) ([]*Withdrawal, error)
}

type ClaimRepo interface {
	// InsertDailyClaim fails with AlreadyClaimed when (user, day) exists.
	InsertDailyClaim(ctx context.Context, c *DailyRewardClaim) error
	FindDailyClaim(ctx context.Context, uid int64, day time.Time) (*DailyRewardClaim, bool, error)
	InsertRandomClaim(ctx context.Context, c *RandomRewardClaim) error
	FindRandomClaim(ctx context.Context, uid int64, day time.Time) (*RandomRewardClaim, bool, error)
}

type AuditRepo interface {
	AppendAudit(ctx context.Context, entry *AuditLog) error
	ListAudit(ctx context.Context, kind TxKind, entityID int64) ([]*AuditLog, error)
}

type ReferralRepo interface {
	GetReferralCode(ctx context.Context, code string) (*ReferralCode, error)
	GetReferralStats(ctx context.Context, uid int64) (*ReferralStats, error)
}

type PolicyRepo interface {
	LoadPolicies(ctx context.Context) (map[string]string, error)
}

// SettlementStore is everything the admin workflow touches.
type SettlementStore interface {
	Transactor
	UserRepo
	DepositRepo
	WithdrawalRepo
	AuditRepo
}

// RewardStore is everything the claim path touches.
type RewardStore interface {
	Transactor
	UserRepo
	ClaimRepo
}

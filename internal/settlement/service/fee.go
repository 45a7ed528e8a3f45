package service

import (
	"time"

	"github.com/shopspring/decimal"
	"gopherpay.com/internal/policy"
	"gopherpay.com/internal/settlement/domain"
)

// FeeSchedule names the fee rate applied to a withdrawal.
type FeeSchedule string

const (
	FeeWeekly  FeeSchedule = "weekly"
	FeeMonthly FeeSchedule = "monthly"
)

var hundred = decimal.NewFromInt(100)

// feeReference is the instant the fee window is measured from: the last
// withdrawal, else the first deposit, else account creation.
func feeReference(u *domain.User) time.Time {
	switch {
	case u.LastWithdrawalAt != nil:
		return *u.LastWithdrawalAt
	case u.FirstDepositAt != nil:
		return *u.FirstDepositAt
	default:
		return u.CreatedAt
	}
}

// ScheduleFor picks the monthly rate once MonthlyThresholdDays have passed
// since the reference instant, the weekly rate otherwise. A user inside the
// monthly window also satisfies the weekly one; monthly wins.
func ScheduleFor(w policy.Withdrawals, u *domain.User, now time.Time) FeeSchedule {
	threshold := time.Duration(w.MonthlyThresholdDays) * 24 * time.Hour
	if now.Sub(feeReference(u)) >= threshold {
		return FeeMonthly
	}
	return FeeWeekly
}

// Fee returns (fee, net) for amount, rounded to cents half away from zero.
func Fee(w policy.Withdrawals, u *domain.User, amount decimal.Decimal, now time.Time) (decimal.Decimal, decimal.Decimal, FeeSchedule) {
	schedule := ScheduleFor(w, u, now)
	pct := w.WeeklyFeePct
	if schedule == FeeMonthly {
		pct = w.MonthlyFeePct
	}
	fee := amount.Mul(pct).Div(hundred).Round(2)
	return fee, amount.Sub(fee), schedule
}

// CanWithdraw reports whether the first-withdrawal waiting period is over.
// Users with an earlier withdrawal are always allowed; users without an
// approved deposit never are.
func CanWithdraw(w policy.Withdrawals, u *domain.User, now time.Time) (bool, time.Time) {
	if u.LastWithdrawalAt != nil {
		return true, time.Time{}
	}
	if u.FirstDepositAt == nil {
		return false, time.Time{}
	}
	opensAt := u.FirstDepositAt.AddDate(0, 0, w.FirstWithdrawalAfterDays)
	return !now.Before(opensAt), opensAt
}

// Package policy holds the economic parameters of the platform: withdrawal
// windows and fees, and the daily and random reward settings.
package policy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopherpay.com/pkg/xerr"
)

// ResetUTCMidnight is the only supported reward reset rule.
const ResetUTCMidnight = "utc_midnight"

// Keys accepted by FromValues.
const (
	KeyFirstWithdrawalAfterDays = "withdrawals.first_withdrawal_after_days"
	KeyWeeklyFeePct             = "withdrawals.weekly_fee_pct"
	KeyMonthlyFeePct            = "withdrawals.monthly_fee_pct"
	KeyMonthlyThresholdDays     = "withdrawals.monthly_threshold_days"
	KeyDailyEnabled             = "daily_reward.enabled"
	KeyDailyAmount              = "daily_reward.amount"
	KeyRandomEnabled            = "random_reward.enabled"
	KeyRandomWinRate            = "random_reward.win_rate"
	KeyRandomMinAmount          = "random_reward.min_amount"
	KeyRandomMaxAmount          = "random_reward.max_amount"
)

type Withdrawals struct {
	FirstWithdrawalAfterDays int
	WeeklyFeePct             decimal.Decimal
	MonthlyFeePct            decimal.Decimal
	MonthlyThresholdDays     int
}

type DailyReward struct {
	Enabled bool
	Amount  decimal.Decimal
	Reset   string
}

type RandomReward struct {
	Enabled   bool
	WinRate   float64
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	Reset     string
}

// Policies is an immutable snapshot; copy it freely.
type Policies struct {
	Withdrawals  Withdrawals
	DailyReward  DailyReward
	RandomReward RandomReward
}

func Defaults() Policies {
	return Policies{
		Withdrawals: Withdrawals{
			FirstWithdrawalAfterDays: 7,
			WeeklyFeePct:             decimal.NewFromInt(5),
			MonthlyFeePct:            decimal.NewFromInt(2),
			MonthlyThresholdDays:     30,
		},
		DailyReward: DailyReward{
			Enabled: true,
			Amount:  decimal.RequireFromString("1.00"),
			Reset:   ResetUTCMidnight,
		},
		RandomReward: RandomReward{
			Enabled:   true,
			WinRate:   0.05,
			MinAmount: decimal.RequireFromString("0.20"),
			MaxAmount: decimal.RequireFromString("2.00"),
			Reset:     ResetUTCMidnight,
		},
	}
}

// FromValues overlays key/value rows on Defaults. Unknown keys are ignored and
// missing keys keep their default.
func FromValues(values map[string]string) (Policies, error) {
	p := Defaults()
	for key, raw := range values {
		key = strings.ToLower(strings.TrimSpace(key))
		raw = strings.TrimSpace(raw)
		if err := p.set(key, raw); err != nil {
			return Policies{}, xerr.Wrap(err, xerr.RequestParamsError, fmt.Sprintf("invalid policy %s=%q", key, raw))
		}
	}
	if err := p.Validate(); err != nil {
		return Policies{}, err
	}
	return p, nil
}

func (p *Policies) set(key, raw string) (err error) {
	switch key {
	case KeyFirstWithdrawalAfterDays:
		p.Withdrawals.FirstWithdrawalAfterDays, err = strconv.Atoi(raw)
	case KeyWeeklyFeePct:
		p.Withdrawals.WeeklyFeePct, err = decimal.NewFromString(raw)
	case KeyMonthlyFeePct:
		p.Withdrawals.MonthlyFeePct, err = decimal.NewFromString(raw)
	case KeyMonthlyThresholdDays:
		p.Withdrawals.MonthlyThresholdDays, err = strconv.Atoi(raw)
	case KeyDailyEnabled:
		p.DailyReward.Enabled, err = strconv.ParseBool(raw)
	case KeyDailyAmount:
		p.DailyReward.Amount, err = decimal.NewFromString(raw)
	case KeyRandomEnabled:
		p.RandomReward.Enabled, err = strconv.ParseBool(raw)
	case KeyRandomWinRate:
		p.RandomReward.WinRate, err = strconv.ParseFloat(raw, 64)
	case KeyRandomMinAmount:
		p.RandomReward.MinAmount, err = decimal.NewFromString(raw)
	case KeyRandomMaxAmount:
		p.RandomReward.MaxAmount, err = decimal.NewFromString(raw)
	}
	return err
}

var hundred = decimal.NewFromInt(100)

func (p Policies) Validate() error {
	invalid := func(msg string) error { return xerr.New(xerr.RequestParamsError, "invalid policy: "+msg) }

	w := p.Withdrawals
	if w.FirstWithdrawalAfterDays < 0 || w.MonthlyThresholdDays < 0 {
		return invalid("withdrawal windows must not be negative")
	}
	for _, pct := range []decimal.Decimal{w.WeeklyFeePct, w.MonthlyFeePct} {
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return invalid("fee percentages must be within [0,100]")
		}
	}
	if p.DailyReward.Amount.IsNegative() {
		return invalid("daily reward amount must not be negative")
	}
	r := p.RandomReward
	if math.IsNaN(r.WinRate) || r.WinRate < 0 || r.WinRate > 1 {
		return invalid("random reward win rate must be within [0,1]")
	}
	if r.MinAmount.IsNegative() || r.MaxAmount.IsNegative() {
		return invalid("random reward amounts must not be negative")
	}
	if r.MinAmount.GreaterThan(r.MaxAmount) {
		return invalid("random reward min amount exceeds max amount")
	}
	if p.DailyReward.Reset != ResetUTCMidnight || r.Reset != ResetUTCMidnight {
		return invalid("only utc_midnight reset is supported")
	}
	return nil
}

package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gopherpay.com/internal/policy"
	"gopherpay.com/internal/settlement/domain"
)

func ptr(t time.Time) *time.Time { return &t }

func TestFee_Schedule(t *testing.T) {
	w := policy.Defaults().Withdrawals
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	at := func(daysAgo int) *time.Time {
		ts := now.AddDate(0, 0, -daysAgo)
		return &ts
	}

	tests := []struct {
		name     string
		user     domain.User
		amount   string
		wantFee  string
		wantNet  string
		schedule FeeSchedule
	}{
		{"recent deposit pays weekly", domain.User{FirstDepositAt: at(10), CreatedAt: *at(40)}, "100", "5", "95", FeeWeekly},
		{"old deposit pays monthly", domain.User{FirstDepositAt: at(45)}, "100", "2", "98", FeeMonthly},
		{"exactly at threshold is monthly", domain.User{FirstDepositAt: at(30)}, "100", "2", "98", FeeMonthly},
		{"last withdrawal wins over deposit", domain.User{FirstDepositAt: at(90), LastWithdrawalAt: at(3)}, "100", "5", "95", FeeWeekly},
		{"falls back to account age", domain.User{CreatedAt: *at(31)}, "100", "2", "98", FeeMonthly},
		{"one second short of threshold is weekly", domain.User{FirstDepositAt: ptr(now.Add(-30*24*time.Hour + time.Second))}, "100", "5", "95", FeeWeekly},
		{"young account without deposit pays weekly", domain.User{CreatedAt: *at(29)}, "100", "5", "95", FeeWeekly},
		{"account age exactly at threshold is monthly", domain.User{CreatedAt: now.Add(-30 * 24 * time.Hour)}, "100", "2", "98", FeeMonthly},
		{"rounds half away from zero", domain.User{FirstDepositAt: at(1)}, "33.33", "1.67", "31.66", FeeWeekly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, net, schedule := Fee(w, &tt.user, decimal.RequireFromString(tt.amount), now)
			assert.Equal(t, tt.schedule, schedule)
			assert.True(t, fee.Equal(decimal.RequireFromString(tt.wantFee)), "fee %s", fee)
			assert.True(t, net.Equal(decimal.RequireFromString(tt.wantNet)), "net %s", net)
		})
	}
}

func TestCanWithdraw(t *testing.T) {
	w := policy.Defaults().Withdrawals
	deposit := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	ok, opensAt := CanWithdraw(w, &domain.User{}, deposit)
	assert.False(t, ok)
	assert.True(t, opensAt.IsZero())

	u := &domain.User{FirstDepositAt: &deposit}
	ok, opensAt = CanWithdraw(w, u, deposit.AddDate(0, 0, 6))
	assert.False(t, ok)
	assert.Equal(t, deposit.AddDate(0, 0, 7), opensAt)

	ok, _ = CanWithdraw(w, u, deposit.AddDate(0, 0, 7))
	assert.True(t, ok)

	last := deposit.Add(time.Hour)
	u.LastWithdrawalAt = &last
	ok, _ = CanWithdraw(w, u, deposit.Add(2*time.Hour))
	assert.True(t, ok)
}

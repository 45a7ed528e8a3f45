package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopherpay.com/internal/events"
	"gopherpay.com/internal/settlement/domain"
	"gopherpay.com/pkg/logger"
	"gopherpay.com/pkg/xerr"
)

// RequestDeposit records a PENDING deposit for an admin to settle.
func (s *SettlementService) RequestDeposit(ctx context.Context, uid int64, amount decimal.Decimal, toAddress, txID string) (*domain.Deposit, error) {
	if !amount.IsPositive() {
		return nil, xerr.New(xerr.RequestParamsError, "amount must be positive")
	}
	if _, err := s.store.GetUser(ctx, uid); err != nil {
		return nil, err
	}

	d := &domain.Deposit{
		UserID:    uid,
		Amount:    amount,
		Status:    domain.TxStatusPending,
		ToAddress: strings.TrimSpace(toAddress),
		TxID:      strings.TrimSpace(txID),
	}
	if err := s.store.CreateDeposit(ctx, d); err != nil {
		return nil, err
	}

	logger.Info(ctx, "deposit requested", zap.Int64("uid", uid), zap.Int64("id", d.ID), zap.String("amount", amount.String()))
	events.Emit(ctx, s.pub, events.Event{
		Type: events.DepositRequested, OccurredAt: d.CreatedAt, UserID: uid, EntityID: d.ID, Amount: amount.String(),
	})
	return d, nil
}

// RequestWithdrawal records a PENDING withdrawal. The first withdrawal opens
// FirstWithdrawalAfterDays after the first approved deposit, and the amount
// may not exceed the balance at request time. Approval checks the balance
// again.
func (s *SettlementService) RequestWithdrawal(ctx context.Context, uid int64, amount decimal.Decimal, toAddress string, now time.Time) (*domain.Withdrawal, error) {
	if !amount.IsPositive() {
		return nil, xerr.New(xerr.RequestParamsError, "amount must be positive")
	}
	toAddress = strings.TrimSpace(toAddress)
	if toAddress == "" {
		return nil, xerr.New(xerr.RequestParamsError, "destination address is required")
	}
	u, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	ok, opensAt := CanWithdraw(s.policies.Get().Withdrawals, u, now)
	if !ok {
		if opensAt.IsZero() {
			return nil, xerr.New(xerr.InvalidState, "no approved deposit yet")
		}
		return nil, xerr.New(xerr.InvalidState, "first withdrawal allowed from "+opensAt.UTC().Format(time.RFC3339))
	}
	if u.Balance.LessThan(amount) {
		return nil, xerr.New(xerr.InvalidState, "insufficient balance")
	}

	w := &domain.Withdrawal{
		UserID:    uid,
		Amount:    amount,
		Status:    domain.TxStatusPending,
		ToAddress: toAddress,
	}
	if err := s.store.CreateWithdrawal(ctx, w); err != nil {
		return nil, err
	}

	logger.Info(ctx, "withdrawal requested", zap.Int64("uid", uid), zap.Int64("id", w.ID), zap.String("amount", amount.String()))
	events.Emit(ctx, s.pub, events.Event{
		Type: events.WithdrawalRequested, OccurredAt: w.CreatedAt, UserID: uid, EntityID: w.ID, Amount: amount.String(),
	})
	return w, nil
}

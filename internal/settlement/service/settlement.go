// Package service implements the admin moderated deposit and withdrawal
// workflow on top of the settlement store.
package service

import (
	"context"
	"time"

	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
	"gopherpay.com/internal/events"
	"gopherpay.com/internal/policy"
	"gopherpay.com/internal/settlement/domain"
	"gopherpay.com/pkg/clock"
	"gopherpay.com/pkg/logger"
	"gopherpay.com/pkg/metrics"
	"gopherpay.com/pkg/orm"
	"gopherpay.com/pkg/trace"
	"gopherpay.com/pkg/xerr"
)

const maxPageSize = 100

type SettlementService struct {
	store    domain.SettlementStore
	policies *policy.Provider
	clock    clock.Clock
	pub      events.Publisher
}

type Option func(*SettlementService)

func WithClock(c clock.Clock) Option { return func(s *SettlementService) { s.clock = c } }

func WithPublisher(p events.Publisher) Option {
	return func(s *SettlementService) { s.pub = p }
}

func NewSettlementService(store domain.SettlementStore, policies *policy.Provider, opts ...Option) *SettlementService {
	s := &SettlementService{store: store, policies: policies, clock: clock.System{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApproveDeposit credits the deposit amount to its owner.
func (s *SettlementService) ApproveDeposit(ctx context.Context, id, actorID int64, reason string) (*domain.Deposit, error) {
	var d *domain.Deposit
	err := s.transition(ctx, domain.TxKindDeposit, domain.AuditApprove, id, actorID, reason, func(txCtx context.Context, now time.Time) (interface{}, interface{}, error) {
		var err error
		if d, err = s.pendingDeposit(txCtx, id); err != nil {
			return nil, nil, err
		}
		before := *d
		if err := s.store.TransitionDeposit(txCtx, id, domain.TxStatusApproved, now); err != nil {
			return nil, nil, err
		}
		if err := s.store.CreditBalance(txCtx, d.UserID, d.Amount); err != nil {
			return nil, nil, err
		}
		if err := s.store.MarkFirstDeposit(txCtx, d.UserID, now); err != nil {
			return nil, nil, err
		}
		d.Status, d.EffectiveAt, d.UpdatedAt = domain.TxStatusApproved, &now, now
		return before, d, nil
	})
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.pub, events.Event{
		Type: events.DepositApproved, OccurredAt: *d.EffectiveAt, UserID: d.UserID,
		EntityID: d.ID, ActorID: actorID, Amount: d.Amount.String(), Reason: reason,
	})
	return d, nil
}

// RejectDeposit closes the deposit without touching any balance.
func (s *SettlementService) RejectDeposit(ctx context.Context, id, actorID int64, reason string) (*domain.Deposit, error) {
	var d *domain.Deposit
	err := s.transition(ctx, domain.TxKindDeposit, domain.AuditReject, id, actorID, reason, func(txCtx context.Context, now time.Time) (interface{}, interface{}, error) {
		var err error
		if d, err = s.pendingDeposit(txCtx, id); err != nil {
			return nil, nil, err
		}
		before := *d
		if err := s.store.TransitionDeposit(txCtx, id, domain.TxStatusRejected, now); err != nil {
			return nil, nil, err
		}
		d.Status, d.EffectiveAt, d.UpdatedAt = domain.TxStatusRejected, &now, now
		return before, d, nil
	})
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.pub, events.Event{
		Type: events.DepositRejected, OccurredAt: *d.EffectiveAt, UserID: d.UserID,
		EntityID: d.ID, ActorID: actorID, Amount: d.Amount.String(), Reason: reason,
	})
	return d, nil
}

// ApproveWithdrawal debits the full amount, records the fee split and stamps
// the user's last withdrawal.
func (s *SettlementService) ApproveWithdrawal(ctx context.Context, id, actorID int64, reason string) (*domain.Withdrawal, error) {
	var w *domain.Withdrawal
	err := s.transition(ctx, domain.TxKindWithdrawal, domain.AuditApprove, id, actorID, reason, func(txCtx context.Context, now time.Time) (interface{}, interface{}, error) {
		var err error
		if w, err = s.pendingWithdrawal(txCtx, id); err != nil {
			return nil, nil, err
		}
		owner, err := s.store.GetUser(txCtx, w.UserID)
		if err != nil {
			return nil, nil, err
		}
		before := *w
		fee, net, schedule := Fee(s.policies.Get().Withdrawals, owner, w.Amount, now)

		if err := s.store.TransitionWithdrawal(txCtx, id, domain.TxStatusApproved, fee, net, now); err != nil {
			return nil, nil, err
		}
		if err := s.store.DebitBalance(txCtx, w.UserID, w.Amount); err != nil {
			return nil, nil, err
		}
		if err := s.store.MarkWithdrawal(txCtx, w.UserID, now); err != nil {
			return nil, nil, err
		}
		logger.Debug(txCtx, "withdrawal fee", zap.Int64("id", id), zap.String("schedule", string(schedule)), zap.String("fee", fee.String()))

		w.Status, w.Fee, w.NetAmount = domain.TxStatusApproved, fee, net
		w.EffectiveAt, w.UpdatedAt = &now, now
		return before, w, nil
	})
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.pub, events.Event{
		Type: events.WithdrawalApproved, OccurredAt: *w.EffectiveAt, UserID: w.UserID,
		EntityID: w.ID, ActorID: actorID, Amount: w.Amount.String(), Fee: w.Fee.String(), Reason: reason,
	})
	return w, nil
}

func (s *SettlementService) RejectWithdrawal(ctx context.Context, id, actorID int64, reason string) (*domain.Withdrawal, error) {
	var w *domain.Withdrawal
	err := s.transition(ctx, domain.TxKindWithdrawal, domain.AuditReject, id, actorID, reason, func(txCtx context.Context, now time.Time) (interface{}, interface{}, error) {
		var err error
		if w, err = s.pendingWithdrawal(txCtx, id); err != nil {
			return nil, nil, err
		}
		before := *w
		if err := s.store.TransitionWithdrawal(txCtx, id, domain.TxStatusRejected, w.Fee, w.NetAmount, now); err != nil {
			return nil, nil, err
		}
		w.Status, w.EffectiveAt, w.UpdatedAt = domain.TxStatusRejected, &now, now
		return before, w, nil
	})
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.pub, events.Event{
		Type: events.WithdrawalRejected, OccurredAt: *w.EffectiveAt, UserID: w.UserID,
		EntityID: w.ID, ActorID: actorID, Amount: w.Amount.String(), Reason: reason,
	})
	return w, nil
}

func (s *SettlementService) ListPendingDeposits(ctx context.Context, page, limit int) ([]*domain.Deposit, error) {
	page, limit = orm.NormalizePage(page, limit, maxPageSize)
	return s.store.ListDepositsByStatus(ctx, domain.TxStatusPending, page, limit)
}

func (s *SettlementService) ListPendingWithdrawals(ctx context.Context, page, limit int) ([]*domain.Withdrawal, error) {
	page, limit = orm.NormalizePage(page, limit, maxPageSize)
	return s.store.ListWithdrawalsByStatus(ctx, domain.TxStatusPending, page, limit)
}

// AuditTrail lists the admin actions taken on one deposit or withdrawal.
func (s *SettlementService) AuditTrail(ctx context.Context, kind domain.TxKind, id int64) ([]*domain.AuditLog, error) {
	return s.store.ListAudit(ctx, kind, id)
}

type transitionFunc func(txCtx context.Context, now time.Time) (before, after interface{}, err error)

// transition runs fn and the audit insert in one transaction after checking
// the actor may perform action. Any error rolls back both.
func (s *SettlementService) transition(ctx context.Context, kind domain.TxKind, action domain.AuditAction, id, actorID int64, reason string, fn transitionFunc) (err error) {
	start := time.Now()
	op := string(kind) + "_" + string(action)
	ctx, span := trace.Start(ctx, "settlement."+op)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		metrics.SettlementDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		result := metrics.ResultOK
		if err != nil {
			result = metrics.ResultRejected
			if code := xerr.CodeOf(err); code == xerr.DbError || code == xerr.ServerCommonError {
				result = metrics.ResultError
			}
		}
		metrics.SettlementTransitions.WithLabelValues(string(kind), string(action), result).Inc()
	}()

	if id <= 0 {
		return xerr.New(xerr.RequestParamsError, "invalid id")
	}
	if err := s.authorize(ctx, actorID, action); err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	err = s.store.Transaction(ctx, func(txCtx context.Context) error {
		before, after, err := fn(txCtx, now)
		if err != nil {
			return err
		}
		return s.store.AppendAudit(txCtx, &domain.AuditLog{
			ActorID:    actorID,
			EntityType: kind,
			EntityID:   id,
			Action:     action,
			Before:     snapshot(before),
			After:      snapshot(after),
			Reason:     reason,
			CreatedAt:  now,
		})
	})

	fields := []zap.Field{
		zap.String("kind", string(kind)),
		zap.String("action", string(action)),
		zap.Int64("id", id),
		zap.Int64("actor", actorID),
	}
	if err != nil {
		logger.Warn(ctx, "settlement transition failed", append(fields, zap.Error(err))...)
		return err
	}
	logger.Info(ctx, "settlement transition committed", fields...)
	return nil
}

// RequireStaff admits any role that may act on the moderation queue.
func (s *SettlementService) RequireStaff(ctx context.Context, actorID int64) error {
	return s.authorize(ctx, actorID, domain.AuditReject)
}

func (s *SettlementService) authorize(ctx context.Context, actorID int64, action domain.AuditAction) error {
	actor, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		if xerr.IsCode(err, xerr.RecordNotFound) {
			return xerr.New(xerr.Forbidden, "unknown actor")
		}
		return err
	}
	allowed := actor.Role.CanReject()
	if action == domain.AuditApprove {
		allowed = actor.Role.CanApprove()
	}
	if !allowed {
		return xerr.New(xerr.Forbidden, actor.Role.String()+" may not "+string(action))
	}
	return nil
}

// pendingDeposit fails fast on a settled deposit. TransitionDeposit repeats
// the check in SQL for the racing case.
func (s *SettlementService) pendingDeposit(ctx context.Context, id int64) (*domain.Deposit, error) {
	d, err := s.store.GetDeposit(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != domain.TxStatusPending {
		return nil, xerr.New(xerr.InvalidState, "deposit already "+d.Status.String())
	}
	return d, nil
}

func (s *SettlementService) pendingWithdrawal(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	w, err := s.store.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status != domain.TxStatusPending {
		return nil, xerr.New(xerr.InvalidState, "withdrawal already "+w.Status.String())
	}
	return w, nil
}

func snapshot(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

package reward

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopherpay.com/internal/events"
	"gopherpay.com/internal/policy"
	"gopherpay.com/internal/settlement/domain"
	"gopherpay.com/pkg/clock"
	"gopherpay.com/pkg/logger"
	"gopherpay.com/pkg/metrics"
	"gopherpay.com/pkg/trace"
	"gopherpay.com/pkg/xerr"
	"gopherpay.com/pkg/xredis"
)

const (
	KindDaily  = "daily"
	KindRandom = "random"
)

const (
	resultAlreadyClaimed = "already_claimed"
	resultNotEligible    = "not_eligible"
)

type DailyStatus struct {
	Enabled        bool            `json:"enabled"`
	CanClaim       bool            `json:"can_claim"`
	Amount         decimal.Decimal `json:"amount"`
	SecondsToReset int64           `json:"seconds_to_reset"`
}

type ClaimResult struct {
	Amount decimal.Decimal `json:"amount"`
}

type RandomStatus struct {
	Enabled        bool            `json:"enabled"`
	Eligible       bool            `json:"eligible"`
	Claimed        bool            `json:"claimed"`
	Amount         decimal.Decimal `json:"amount"`
	SecondsToReset int64           `json:"seconds_to_reset"`
}

type RandomResult struct {
	Eligible bool            `json:"eligible"`
	Amount   decimal.Decimal `json:"amount"`
}

// Guard is an optional fast path that turns away repeated claims before they
// reach the database. xredis.Guard implements it.
type Guard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

var _ Guard = (*xredis.Guard)(nil)

type Service struct {
	store    domain.RewardStore
	engine   *Engine
	policies *policy.Provider
	guard    Guard
	pub      events.Publisher
}

type Option func(*Service)

func WithGuard(g Guard) Option { return func(s *Service) { s.guard = g } }

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.pub = p } }

func NewService(store domain.RewardStore, engine *Engine, policies *policy.Provider, opts ...Option) *Service {
	s := &Service{store: store, engine: engine, policies: policies}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) DailyStatus(ctx context.Context, uid int64, now time.Time) (*DailyStatus, error) {
	if _, err := s.store.GetUser(ctx, uid); err != nil {
		return nil, err
	}
	pol := s.policies.Get().DailyReward
	_, claimed, err := s.store.FindDailyClaim(ctx, uid, clock.StartOfDay(now))
	if err != nil {
		return nil, err
	}
	return &DailyStatus{
		Enabled:        pol.Enabled,
		CanClaim:       pol.Enabled && !claimed,
		Amount:         pol.Amount,
		SecondsToReset: clock.SecondsToReset(now),
	}, nil
}

// ClaimDaily credits the flat daily reward once per user per UTC day.
func (s *Service) ClaimDaily(ctx context.Context, uid int64, now time.Time) (*ClaimResult, error) {
	start := time.Now()
	defer func() { metrics.SettlementDuration.WithLabelValues("claim_daily").Observe(time.Since(start).Seconds()) }()

	pol := s.policies.Get().DailyReward
	if !pol.Enabled {
		return nil, xerr.New(xerr.RequestParamsError, "daily reward disabled")
	}
	day := clock.StartOfDay(now)
	amount := pol.Amount

	err := s.commit(ctx, KindDaily, uid, now, amount, func(txCtx context.Context) error {
		return s.store.InsertDailyClaim(txCtx, &domain.DailyRewardClaim{
			UserID: uid, ClaimDate: day, ClaimedAt: now.UTC(), Amount: amount,
		})
	}, func(ctx context.Context) (bool, error) {
		_, found, err := s.store.FindDailyClaim(ctx, uid, day)
		return found, err
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.pub, events.Event{
		Type: events.DailyRewardClaimed, OccurredAt: now.UTC(), UserID: uid,
		Amount: amount.String(), DateKey: clock.DateKey(now),
	})
	return &ClaimResult{Amount: amount}, nil
}

func (s *Service) RandomStatus(ctx context.Context, uid int64, now time.Time) (*RandomStatus, error) {
	if _, err := s.store.GetUser(ctx, uid); err != nil {
		return nil, err
	}
	pol := s.policies.Get().RandomReward
	out := s.engine.Evaluate(uid, now)

	claim, claimed, err := s.store.FindRandomClaim(ctx, uid, clock.StartOfDay(now))
	if err != nil {
		return nil, err
	}
	st := &RandomStatus{
		Enabled:        pol.Enabled,
		Eligible:       out.Eligible,
		Claimed:        claimed,
		Amount:         out.Amount,
		SecondsToReset: clock.SecondsToReset(now),
	}
	if claimed {
		// a policy change during the day must not rewrite what was paid
		st.Amount = claim.Amount
	}
	return st, nil
}

// ClaimRandom credits the random reward when the engine says the user won
// today. Losing is not an error.
func (s *Service) ClaimRandom(ctx context.Context, uid int64, now time.Time) (*RandomResult, error) {
	start := time.Now()
	defer func() {
		metrics.SettlementDuration.WithLabelValues("claim_random").Observe(time.Since(start).Seconds())
	}()

	if !s.policies.Get().RandomReward.Enabled {
		return nil, xerr.New(xerr.RequestParamsError, "random reward disabled")
	}
	if _, err := s.store.GetUser(ctx, uid); err != nil {
		return nil, err
	}
	out := s.engine.Evaluate(uid, now)
	if !out.Eligible {
		metrics.RewardClaims.WithLabelValues(KindRandom, resultNotEligible).Inc()
		return &RandomResult{Eligible: false, Amount: decimal.Zero}, nil
	}

	day := clock.StartOfDay(now)
	err := s.commit(ctx, KindRandom, uid, now, out.Amount, func(txCtx context.Context) error {
		return s.store.InsertRandomClaim(txCtx, &domain.RandomRewardClaim{
			UserID: uid, ClaimDate: day, ClaimedAt: now.UTC(), Amount: out.Amount,
		})
	}, func(ctx context.Context) (bool, error) {
		_, found, err := s.store.FindRandomClaim(ctx, uid, day)
		return found, err
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.pub, events.Event{
		Type: events.RandomRewardClaimed, OccurredAt: now.UTC(), UserID: uid,
		Amount: out.Amount.String(), DateKey: out.DateKey,
	})
	return &RandomResult{Eligible: true, Amount: out.Amount}, nil
}

// commit inserts the claim row and credits the balance in one transaction.
// The claim goes first: the unique (user_id, claim_date) index rejects the
// second claimer before any money moves. A held guard key is only trusted
// once claimed confirms the row exists.
func (s *Service) commit(ctx context.Context, kind string, uid int64, now time.Time, amount decimal.Decimal,
	insert func(txCtx context.Context) error, claimed func(ctx context.Context) (bool, error)) (err error) {
	ctx, span := trace.Start(ctx, "reward.claim_"+kind)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	guardKey := fmt.Sprintf("%s:%d:%s", kind, uid, clock.DateKey(now))
	if s.guard != nil {
		ttl := time.Duration(clock.SecondsToReset(now)+60) * time.Second
		ok, err := s.guard.Acquire(ctx, guardKey, ttl)
		switch {
		case err != nil:
			logger.Warn(ctx, "reward guard unavailable, falling back to database", zap.Error(err))
		case !ok:
			found, err := claimed(ctx)
			if err != nil {
				return err
			}
			if found {
				metrics.RewardClaims.WithLabelValues(kind, resultAlreadyClaimed).Inc()
				return xerr.New(xerr.AlreadyClaimed, kind+" reward already claimed today")
			}
			// key outlived a failed claim or a racing claim is in flight;
			// the unique index decides
			logger.Warn(ctx, "reward guard set without a claim row", zap.String("key", guardKey))
		}
	}

	err = s.store.Transaction(ctx, func(txCtx context.Context) error {
		if err := insert(txCtx); err != nil {
			return err
		}
		return s.store.CreditBalance(txCtx, uid, amount)
	})
	if err != nil {
		if s.guard != nil && !xerr.IsCode(err, xerr.AlreadyClaimed) {
			// a cancelled request must still free the key
			if rerr := s.guard.Release(context.WithoutCancel(ctx), guardKey); rerr != nil {
				logger.Warn(ctx, "release reward guard failed", zap.String("key", guardKey), zap.Error(rerr))
			}
		}
		result := metrics.ResultError
		if xerr.IsCode(err, xerr.AlreadyClaimed) {
			result = resultAlreadyClaimed
			logger.Info(ctx, "reward already claimed", zap.String("kind", kind), zap.Int64("uid", uid))
		} else {
			logger.Error(ctx, "reward claim failed", zap.String("kind", kind), zap.Int64("uid", uid), zap.Error(err))
		}
		metrics.RewardClaims.WithLabelValues(kind, result).Inc()
		return err
	}

	metrics.RewardClaims.WithLabelValues(kind, metrics.ResultOK).Inc()
	logger.Info(ctx, "reward claimed",
		zap.String("kind", kind),
		zap.Int64("uid", uid),
		zap.String("amount", amount.String()),
		zap.String("date", clock.DateKey(now)),
	)
	return nil
}

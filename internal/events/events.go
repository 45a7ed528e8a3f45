// Package events publishes domain events after the owning transaction has
// committed. Delivery is best effort: a failed publish is logged and counted,
// never reported to the caller.
package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopherpay.com/pkg/logger"
	"gopherpay.com/pkg/metrics"
)

// Event types, also the last segment of the subject.
const (
	DepositRequested    = "deposit.requested"
	DepositApproved     = "deposit.approved"
	DepositRejected     = "deposit.rejected"
	WithdrawalRequested = "withdrawal.requested"
	WithdrawalApproved  = "withdrawal.approved"
	WithdrawalRejected  = "withdrawal.rejected"
	DailyRewardClaimed  = "reward.daily.claimed"
	RandomRewardClaimed = "reward.random.claimed"
)

type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	UserID     int64     `json:"user_id"`
	EntityID   int64     `json:"entity_id,omitempty"`
	ActorID    int64     `json:"actor_id,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	Fee        string    `json:"fee,omitempty"`
	DateKey    string    `json:"date_key,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Emit publishes ev on p, if any, and swallows the error after logging it.
func Emit(ctx context.Context, p Publisher, ev Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		metrics.EventsPublished.WithLabelValues(ev.Type, metrics.ResultError).Inc()
		logger.Warn(ctx, "publish event failed", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	metrics.EventsPublished.WithLabelValues(ev.Type, metrics.ResultOK).Inc()
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

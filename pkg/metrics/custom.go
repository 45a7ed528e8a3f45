package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values shared by the business counters.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	SettlementTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gopherpay",
			Name:      "settlement_transitions_total",
			Help:      "Deposit and withdrawal status transitions by outcome.",
		},
		[]string{"kind", "action", "result"}, // kind: DEPOSIT/WITHDRAWAL, action: APPROVE/REJECT
	)

	SettlementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gopherpay",
			Name:      "settlement_duration_seconds",
			Help:      "Latency of settlement and claim operations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"op"},
	)

	RewardClaims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gopherpay",
			Name:      "reward_claims_total",
			Help:      "Reward claim attempts by outcome.",
		},
		[]string{"kind", "result"}, // kind: daily/random, result: ok/already_claimed/not_eligible/error
	)

	PolicyReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gopherpay",
			Name:      "policy_reloads_total",
			Help:      "Policy snapshot reloads.",
		},
		[]string{"source", "result"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gopherpay",
			Name:      "events_published_total",
			Help:      "Domain events handed to the broker.",
		},
		[]string{"type", "result"},
	)
)

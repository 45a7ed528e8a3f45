// Package reward decides and settles the daily and random rewards.
package reward

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopherpay.com/internal/policy"
	"gopherpay.com/pkg/clock"
)

// Outcome is the engine's verdict for one user and one UTC day.
type Outcome struct {
	DateKey  string
	Eligible bool
	Fraction float64
	Amount   decimal.Decimal
}

// Engine computes random reward eligibility. The result depends only on the
// user key, the UTC day and the random reward policy, so every replica and
// every retry agrees. The inputs are public: this is fairness, not secrecy.
type Engine struct {
	policies *policy.Provider
}

func NewEngine(p *policy.Provider) *Engine {
	return &Engine{policies: p}
}

func (e *Engine) Evaluate(userID int64, day time.Time) Outcome {
	return e.EvaluateKey(strconv.FormatInt(userID, 10), day)
}

func (e *Engine) EvaluateKey(key string, day time.Time) Outcome {
	return Evaluate(e.policies.Get().RandomReward, key, day)
}

// Evaluate is the pure form of Engine.EvaluateKey.
func Evaluate(rp policy.RandomReward, key string, day time.Time) Outcome {
	dateKey := clock.DateKey(day)
	fraction := Fraction(key + ":" + dateKey)
	out := Outcome{DateKey: dateKey, Fraction: fraction, Amount: decimal.Zero}
	if !rp.Enabled || fraction >= rp.WinRate {
		return out
	}

	amountFraction := decimal.NewFromFloat(Fraction(key + ":" + dateKey + ":amt"))
	spread := rp.MaxAmount.Sub(rp.MinAmount)
	out.Eligible = true
	out.Amount = rp.MinAmount.Add(amountFraction.Mul(spread)).Round(2)
	return out
}

// Fraction maps input to [0,1] using the first 32 bits of its SHA-256 digest.
func Fraction(input string) float64 {
	sum := sha256.Sum256([]byte(input))
	return float64(binary.BigEndian.Uint32(sum[:4])) / float64(0xFFFFFFFF)
}

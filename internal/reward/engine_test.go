package reward

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopherpay.com/internal/policy"
)

// referenceFraction follows the published recipe literally: hex digest,
// first 8 hex chars as an unsigned integer, divided by 0xFFFFFFFF.
func referenceFraction(t *testing.T, input string) float64 {
	t.Helper()
	sum := sha256.Sum256([]byte(input))
	n, err := strconv.ParseUint(hex.EncodeToString(sum[:])[:8], 16, 32)
	require.NoError(t, err)
	return float64(n) / float64(0xFFFFFFFF)
}

func randomPolicy(winRate float64) policy.RandomReward {
	rp := policy.Defaults().RandomReward
	rp.WinRate = winRate
	return rp
}

func TestFraction_MatchesHexRecipe(t *testing.T) {
	for _, in := range []string{"u1:2024-01-15", "abc123:2024-06-01", "abc123:2024-06-01:amt", "42:1999-12-31", ""} {
		assert.Equal(t, referenceFraction(t, in), Fraction(in), in)
		f := Fraction(in)
		assert.True(t, f >= 0 && f <= 1)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rp := randomPolicy(0.05)

	first := Evaluate(rp, "u1", day)
	assert.Equal(t, "2024-01-15", first.DateKey)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Evaluate(rp, "u1", day.Add(time.Duration(i)*3*time.Hour)))
	}
	// non-UTC input lands on its UTC day
	tokyo := time.FixedZone("JST", 9*3600)
	assert.Equal(t, first, Evaluate(rp, "u1", time.Date(2024, 1, 15, 20, 0, 0, 0, tokyo)))
}

func leadingHex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

// Reference vectors computed once from the hex recipe and pinned here.
func TestEvaluate_PinnedVectors(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		day          time.Time
		winRate      float64
		hex          string
		fraction     float64
		amountHex    string
		wantEligible bool
		wantAmount   string
	}{
		{
			name: "u1 wins", key: "u1", day: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), winRate: 0.05,
			hex: "036211c6", fraction: 0.013215170710630521, amountHex: "05f8b3cf",
			wantEligible: true, wantAmount: "0.24",
		},
		{
			name: "abc123 loses", key: "abc123", day: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), winRate: 0.05,
			hex: "367b2675", fraction: 0.2128166233219245, amountHex: "97e783f5",
			wantEligible: false, wantAmount: "0.00",
		},
		{
			name: "abc123 at win rate 1", key: "abc123", day: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), winRate: 1,
			hex: "367b2675", fraction: 0.2128166233219245, amountHex: "97e783f5",
			wantEligible: true, wantAmount: "1.27",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.key + ":" + tt.day.Format("2006-01-02")
			assert.Equal(t, tt.hex, leadingHex(input))
			assert.Equal(t, tt.amountHex, leadingHex(input+":amt"))

			got := Evaluate(randomPolicy(tt.winRate), tt.key, tt.day)
			assert.InDelta(t, tt.fraction, got.Fraction, 1e-12)
			assert.Equal(t, tt.wantEligible, got.Eligible)
			assert.Equal(t, tt.wantAmount, got.Amount.StringFixed(2))
		})
	}
}

func TestEvaluate_WinRateBounds(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	min, max := decimal.RequireFromString("0.20"), decimal.RequireFromString("2.00")

	for uid := 1; uid <= 200; uid++ {
		key := fmt.Sprintf("%d", uid)

		never := Evaluate(randomPolicy(0), key, day)
		assert.False(t, never.Eligible)
		assert.True(t, never.Amount.IsZero())

		always := Evaluate(randomPolicy(1), key, day)
		if always.Fraction < 1 {
			require.True(t, always.Eligible)
			assert.False(t, always.Amount.LessThan(min), "amount %s below min", always.Amount)
			assert.False(t, always.Amount.GreaterThan(max), "amount %s above max", always.Amount)
			assert.Equal(t, int32(-2), always.Amount.Exponent())
		}
	}
}

func TestEvaluate_Disabled(t *testing.T) {
	rp := randomPolicy(1)
	rp.Enabled = false
	out := Evaluate(rp, "u1", time.Now())
	assert.False(t, out.Eligible)
	assert.True(t, out.Amount.IsZero())
}

func TestEngine_UsesProviderSnapshot(t *testing.T) {
	pol := policy.Defaults()
	pol.RandomReward.WinRate = 1
	e := NewEngine(policy.NewStatic(pol))

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, Evaluate(pol.RandomReward, "7", day), e.Evaluate(7, day))
	assert.Equal(t, e.Evaluate(7, day), e.EvaluateKey("7", day))
}

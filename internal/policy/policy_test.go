package policy

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopherpay.com/pkg/xerr"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	require.NoError(t, d.Validate())
	assert.Equal(t, 7, d.Withdrawals.FirstWithdrawalAfterDays)
	assert.Equal(t, 30, d.Withdrawals.MonthlyThresholdDays)
	assert.True(t, d.Withdrawals.WeeklyFeePct.Equal(decimal.NewFromInt(5)))
	assert.True(t, d.Withdrawals.MonthlyFeePct.Equal(decimal.NewFromInt(2)))
	assert.True(t, d.DailyReward.Enabled)
	assert.Equal(t, "1.00", d.DailyReward.Amount.StringFixed(2))
	assert.Equal(t, 0.05, d.RandomReward.WinRate)
	assert.Equal(t, "0.20", d.RandomReward.MinAmount.StringFixed(2))
	assert.Equal(t, "2.00", d.RandomReward.MaxAmount.StringFixed(2))
}

func TestFromValues(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		wantErr bool
		check   func(t *testing.T, p Policies)
	}{
		{
			name:   "empty keeps defaults",
			values: nil,
			check:  func(t *testing.T, p Policies) { assert.Equal(t, Defaults(), p) },
		},
		{
			name: "overrides",
			values: map[string]string{
				KeyWeeklyFeePct:    "4.5",
				KeyDailyAmount:     " 2.50 ",
				KeyRandomEnabled:   "false",
				KeyRandomWinRate:   "0.5",
				"Unknown.Key":      "whatever",
				KeyMonthlyFeePct:   "1",
				KeyRandomMaxAmount: "3",
			},
			check: func(t *testing.T, p Policies) {
				assert.Equal(t, "4.5", p.Withdrawals.WeeklyFeePct.String())
				assert.Equal(t, "1", p.Withdrawals.MonthlyFeePct.String())
				assert.Equal(t, "2.5", p.DailyReward.Amount.String())
				assert.False(t, p.RandomReward.Enabled)
				assert.Equal(t, 0.5, p.RandomReward.WinRate)
				assert.Equal(t, "3", p.RandomReward.MaxAmount.String())
			},
		},
		{name: "unparsable number", values: map[string]string{KeyFirstWithdrawalAfterDays: "seven"}, wantErr: true},
		{name: "unparsable bool", values: map[string]string{KeyDailyEnabled: "maybe"}, wantErr: true},
		{name: "win rate above one", values: map[string]string{KeyRandomWinRate: "1.5"}, wantErr: true},
		{name: "win rate NaN", values: map[string]string{KeyRandomWinRate: "NaN"}, wantErr: true},
		{name: "win rate +Inf", values: map[string]string{KeyRandomWinRate: "+Inf"}, wantErr: true},
		{name: "win rate -Inf", values: map[string]string{KeyRandomWinRate: "-Inf"}, wantErr: true},
		{name: "min above max", values: map[string]string{KeyRandomMinAmount: "5"}, wantErr: true},
		{name: "fee above 100", values: map[string]string{KeyWeeklyFeePct: "101"}, wantErr: true},
		{name: "negative daily amount", values: map[string]string{KeyDailyAmount: "-1"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := FromValues(tt.values)
			if tt.wantErr {
				assert.True(t, xerr.IsCode(err, xerr.RequestParamsError), "got %v", err)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestValidate_RejectsNaNWinRate(t *testing.T) {
	p := Defaults()
	p.RandomReward.WinRate = math.NaN()
	assert.True(t, xerr.IsCode(p.Validate(), xerr.RequestParamsError))
}

type countingSource struct {
	calls  atomic.Int32
	values map[string]string
	err    error
	gate   chan struct{}
}

func (*countingSource) Name() string { return "counting" }

func (s *countingSource) Load(context.Context) (map[string]string, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	return s.values, s.err
}

func TestProvider_ReloadSwapsSnapshot(t *testing.T) {
	src := &countingSource{values: map[string]string{KeyDailyAmount: "3"}}
	p := NewProvider(src)
	assert.Equal(t, Defaults(), p.Get())

	require.NoError(t, p.Reload(context.Background()))
	assert.Equal(t, "3", p.Get().DailyReward.Amount.String())

	// a bad source keeps the last good snapshot
	src.values = map[string]string{KeyRandomWinRate: "2"}
	assert.Error(t, p.Reload(context.Background()))
	assert.Equal(t, "3", p.Get().DailyReward.Amount.String())

	src.err = errors.New("db down")
	assert.Error(t, p.Reload(context.Background()))
	assert.Equal(t, "3", p.Get().DailyReward.Amount.String())
}

func TestProvider_ConcurrentReloadsCoalesce(t *testing.T) {
	src := &countingSource{values: map[string]string{}, gate: make(chan struct{})}
	p := NewProvider(src)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Reload(context.Background())
		}()
	}
	// let the goroutines pile up behind the first load before releasing it
	for src.calls.Load() == 0 {
	}
	close(src.gate)
	wg.Wait()

	assert.LessOrEqual(t, src.calls.Load(), int32(10))
	assert.GreaterOrEqual(t, src.calls.Load(), int32(1))
}

func TestNewStatic(t *testing.T) {
	pol := Defaults()
	pol.RandomReward.Enabled = false
	p := NewStatic(pol)
	require.NoError(t, p.Reload(context.Background()))
	assert.False(t, p.Get().RandomReward.Enabled)
	assert.Equal(t, "static", p.SourceName())
}

func TestViperSource_FlattensSection(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
policy:
  source: config
  values:
    withdrawals:
      weekly_fee_pct: 4.5
      first_withdrawal_after_days: 3
    random_reward:
      enabled: false
`)))

	p := NewProvider(ViperSource{V: v, Key: "policy.values"})
	require.NoError(t, p.Reload(context.Background()))

	got := p.Get()
	assert.Equal(t, "4.5", got.Withdrawals.WeeklyFeePct.String())
	assert.Equal(t, 3, got.Withdrawals.FirstWithdrawalAfterDays)
	assert.False(t, got.RandomReward.Enabled)
	assert.True(t, got.DailyReward.Enabled)

	empty := ViperSource{V: viper.New(), Key: "policy.values"}
	values, err := empty.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, values)
}

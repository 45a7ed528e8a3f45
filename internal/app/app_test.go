package app

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopherpay.com/internal/settlement/domain"
	"gopherpay.com/internal/settlement/repo"
	"gopherpay.com/pkg/orm/ormtest"
)

const sample = `
name: gopherpay
policy:
  source: config
  values:
    withdrawals:
      weekly_fee_pct: 4
`

func readConfig(t *testing.T, body string) (*viper.Viper, *Cfg) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(body)))
	cfg := &Cfg{}
	require.NoError(t, v.Unmarshal(cfg))
	return v, cfg
}

func TestPolicyProvider_ConfigSource(t *testing.T) {
	v, cfg := readConfig(t, sample)
	assert.Equal(t, PolicySourceConfig, cfg.Policy.Source)

	p, err := newPolicyProvider(context.Background(), cfg, v, nil)
	require.NoError(t, err)
	assert.Equal(t, "4", p.Get().Withdrawals.WeeklyFeePct.String())

	// a changed file reaches the provider through the watcher hook
	v.Set("policy.values.withdrawals.weekly_fee_pct", "3")
	a := &App{cfg: cfg, Policies: p}
	a.OnConfigChange(v)
	assert.Equal(t, "3", p.Get().Withdrawals.WeeklyFeePct.String())
}

func TestPolicyProvider_DBSource(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := ormtest.Open(t, repo.Models()...)
	require.NoError(t, db.Create(&domain.PolicyRow{Key: "withdrawals.monthly_fee_pct", Value: "1.5"}).Error)

	v, cfg := readConfig(t, "policy:\n  source: db\n")
	p, err := newPolicyProvider(ctx, cfg, v, repo.New(db))
	require.NoError(t, err)
	assert.Equal(t, "db", p.SourceName())
	assert.Equal(t, "1.5", p.Get().Withdrawals.MonthlyFeePct.String())

	// file changes do not touch a db-backed provider
	a := &App{cfg: cfg, Policies: p}
	a.OnConfigChange(v)
	assert.Equal(t, "1.5", p.Get().Withdrawals.MonthlyFeePct.String())
}

func TestPolicyProvider_Errors(t *testing.T) {
	v, cfg := readConfig(t, "policy:\n  source: etcd\n")
	_, err := newPolicyProvider(context.Background(), cfg, v, nil)
	assert.ErrorContains(t, err, "unknown policy source")

	v, cfg = readConfig(t, `
policy:
  source: config
  values:
    random_reward:
      win_rate: 1.5
`)
	_, err = newPolicyProvider(context.Background(), cfg, v, nil)
	assert.Error(t, err)
}

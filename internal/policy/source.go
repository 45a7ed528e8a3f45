package policy

import (
	"context"

	"github.com/spf13/viper"
	"gopherpay.com/internal/settlement/domain"
)

// Source yields the raw key/value rows a snapshot is built from.
type Source interface {
	Name() string
	Load(ctx context.Context) (map[string]string, error)
}

// DBSource reads the policies table.
type DBSource struct {
	Repo domain.PolicyRepo
}

func (DBSource) Name() string { return "db" }

func (s DBSource) Load(ctx context.Context) (map[string]string, error) {
	return s.Repo.LoadPolicies(ctx)
}

// ViperSource reads a nested section of the service config, e.g.
//
//	policy:
//	  values:
//	    withdrawals:
//	      weekly_fee_pct: 4.5
//
// Nested keys are flattened with dots.
type ViperSource struct {
	V   *viper.Viper
	Key string
}

func (ViperSource) Name() string { return "config" }

func (s ViperSource) Load(context.Context) (map[string]string, error) {
	out := map[string]string{}
	sub := s.V.Sub(s.Key)
	if sub == nil {
		return out, nil
	}
	for _, k := range sub.AllKeys() {
		out[k] = sub.GetString(k)
	}
	return out, nil
}

// StaticSource serves fixed values.
type StaticSource map[string]string

func (StaticSource) Name() string { return "static" }

func (s StaticSource) Load(context.Context) (map[string]string, error) {
	out := make(map[string]string, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out, nil
}

package policy

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gopherpay.com/pkg/logger"
	"gopherpay.com/pkg/metrics"
	"gopherpay.com/pkg/safe"
)

// Provider hands out the current policy snapshot. The snapshot only changes
// through Reload, which swaps it atomically; readers never observe a partly
// applied update.
type Provider struct {
	src   Source
	cur   atomic.Pointer[Policies]
	group singleflight.Group
}

// NewProvider starts from Defaults; call Reload to read src.
func NewProvider(src Source) *Provider {
	p := &Provider{src: src}
	d := Defaults()
	p.cur.Store(&d)
	return p
}

// NewStatic returns a provider pinned to pol. Reload is a no-op.
func NewStatic(pol Policies) *Provider {
	p := &Provider{}
	p.cur.Store(&pol)
	return p
}

func (p *Provider) Get() Policies {
	return *p.cur.Load()
}

func (p *Provider) SourceName() string {
	if p.src == nil {
		return "static"
	}
	return p.src.Name()
}

// Reload re-reads the source and swaps the snapshot. Concurrent calls share
// one load. On error the previous snapshot stays in force.
func (p *Provider) Reload(ctx context.Context) error {
	if p.src == nil {
		return nil
	}
	_, err, _ := p.group.Do("reload", func() (interface{}, error) {
		values, err := p.src.Load(ctx)
		if err != nil {
			return nil, err
		}
		pol, err := FromValues(values)
		if err != nil {
			return nil, err
		}
		p.cur.Store(&pol)
		return nil, nil
	})

	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
		logger.Warn(ctx, "policy reload failed, keeping previous snapshot",
			zap.String("source", p.SourceName()), zap.Error(err))
	} else {
		logger.Info(ctx, "policy reloaded", zap.String("source", p.SourceName()))
	}
	metrics.PolicyReloads.WithLabelValues(p.SourceName(), result).Inc()
	return err
}

// Watch is a config.LoadAndWatch hook: a changed config file triggers a reload.
func (p *Provider) Watch(_ *viper.Viper) {
	_ = p.Reload(context.Background())
}

// RunRefresher reloads every interval until ctx is done, for sources that
// change without a file event (the policies table).
func (p *Provider) RunRefresher(ctx context.Context, interval time.Duration) {
	if p.src == nil || interval <= 0 {
		return
	}
	safe.GoCtx(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = p.Reload(ctx)
			}
		}
	})
}

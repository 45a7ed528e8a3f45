// Package app assembles the service from its config: storage, optional
// redis/nats/otel, the policy provider, the services and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopherpay.com/internal/api"
	"gopherpay.com/internal/events"
	"gopherpay.com/internal/policy"
	"gopherpay.com/internal/reward"
	"gopherpay.com/internal/settlement/repo"
	"gopherpay.com/internal/settlement/service"
	"gopherpay.com/pkg/clock"
	"gopherpay.com/pkg/logger"
	"gopherpay.com/pkg/metrics"
	"gopherpay.com/pkg/orm"
	"gopherpay.com/pkg/ratelimit"
	"gopherpay.com/pkg/safe"
	"gopherpay.com/pkg/trace"
	"gopherpay.com/pkg/xredis"
	"gorm.io/gorm"
)

type App struct {
	cfg      *Cfg
	db       *gorm.DB
	rdb      *redis.Client
	Policies *policy.Provider
	Router   *gin.Engine
	closers  []func(context.Context) error
}

// New connects every enabled dependency. On error whatever was already opened
// is closed again.
func New(ctx context.Context, cfg *Cfg, v *viper.Viper) (a *App, err error) {
	a = &App{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	if cfg.OTel.Enabled {
		shutdown, err := trace.InitTrace(cfg.Name, cfg.OTel.Addr, cfg.OTel.SampleRatio)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, shutdown)
	}

	a.db, err = orm.Open(&orm.Config{
		Type:        cfg.Db.Type,
		DSN:         cfg.Db.SourceName,
		MaxIdle:     cfg.Db.MaxIdleConns,
		MaxOpen:     cfg.Db.MaxOpenConns,
		MaxLifetime: cfg.Db.ConnMaxLifetimeMinutes * 60,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })

	store := repo.New(a.db)
	if cfg.Db.AutoMigrate {
		if err := store.AutoMigrate(ctx); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	a.Policies, err = newPolicyProvider(ctx, cfg, v, store)
	if err != nil {
		return nil, err
	}

	var rewardOpts []reward.Option
	var settleOpts []service.Option
	if cfg.Redis.Enabled {
		a.rdb, err = xredis.NewRedis(&xredis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Auth, DB: cfg.Redis.Database})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return a.rdb.Close() })
		rewardOpts = append(rewardOpts, reward.WithGuard(xredis.NewGuard(a.rdb, "reward:")))
	}
	if cfg.Nats.Enabled {
		pub, err := events.NewNatsPublisher(cfg.Nats.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return pub.Close() })
		guarded := events.NewBreakerPublisher(pub, events.BreakerConfig{})
		rewardOpts = append(rewardOpts, reward.WithPublisher(guarded))
		settleOpts = append(settleOpts, service.WithPublisher(guarded))
	}

	var limiter *ratelimit.Store
	if cfg.RateLimit.PerSecond > 0 {
		limiter = ratelimit.NewStore(rate.Limit(cfg.RateLimit.PerSecond), cfg.RateLimit.Burst, 10*time.Minute)
		limiter.StartJanitor(ctx, time.Minute)
	}

	engine := reward.NewEngine(a.Policies)
	h := api.NewHandler(
		reward.NewService(store, engine, a.Policies, rewardOpts...),
		reward.NewReferralService(store),
		service.NewSettlementService(store, a.Policies, settleOpts...),
		clock.System{},
	)
	a.Router = api.NewRouter(h, api.RouterOptions{
		ServiceName: cfg.Name,
		Instrument:  true,
		Limiter:     limiter,
		Ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return sqlDB.PingContext(pingCtx)
		},
	})

	safe.GoCtx(ctx, func(ctx context.Context) {
		metrics.CollectPools(ctx, sqlDB, a.rdb, 5*time.Second)
	})
	return a, nil
}

func newPolicyProvider(ctx context.Context, cfg *Cfg, v *viper.Viper, store *repo.Repo) (*policy.Provider, error) {
	var src policy.Source
	switch cfg.Policy.Source {
	case "", PolicySourceConfig:
		src = policy.ViperSource{V: v, Key: policyValuesKey}
	case PolicySourceDB:
		src = policy.DBSource{Repo: store}
	default:
		return nil, fmt.Errorf("unknown policy source %q", cfg.Policy.Source)
	}

	p := policy.NewProvider(src)
	if err := p.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	if cfg.Policy.Source == PolicySourceDB {
		p.RunRefresher(ctx, time.Duration(cfg.Policy.ReloadIntervalSeconds)*time.Second)
	}
	return p, nil
}

// OnConfigChange is the config watcher hook. Only the config policy source
// depends on the file; the rest of the config is read once at startup.
func (a *App) OnConfigChange(v *viper.Viper) {
	if a.Policies.SourceName() == PolicySourceConfig {
		a.Policies.Watch(v)
	}
}

// Run serves HTTP until ctx is cancelled or the listener fails, then drains
// in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := api.NewServer(a.cfg.Addr, a.Router)
	errCh := make(chan error, 1)
	safe.Go(func() {
		logger.Info(ctx, "http listening", zap.String("addr", a.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	})

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	case runErr = <-errCh:
		logger.Error(context.Background(), "http server error", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "http shutdown error", zap.Error(err))
	}
	return runErr
}

// Close releases dependencies in reverse order of acquisition.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn(ctx, "close dependency failed", zap.Error(err))
		}
	}
	a.closers = nil
}

package metrics

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	DbPoolOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "app_db_pool_open",
		Help: "Current open DB connections",
	})
	DbPoolIdle         = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_db_pool_idle"})
	DbPoolInuse        = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_db_pool_inuse"})
	DbPoolWaitCount    = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_db_pool_wait_count"})
	DbPoolWaitDuration = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_db_pool_wait_seconds"})

	RedisPoolOpen  = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_redis_pool_open"})
	RedisPoolIdle  = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_redis_pool_idle"})
	RedisPoolHits  = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_redis_pool_hits"})
	RedisPoolMiss  = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_redis_pool_misses"})
	RedisPoolStale = promauto.NewGauge(prometheus.GaugeOpts{Name: "app_redis_pool_stale"})

	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_redis_errors_total",
		Help: "Redis errors",
	}, []string{"cmd"})
)

// ObserveDBStats copies sql.DBStats into the pool gauges. The wait counters
// are cumulative in DBStats, so they are exported as gauges.
func ObserveDBStats(s sql.DBStats) {
	DbPoolOpen.Set(float64(s.OpenConnections))
	DbPoolIdle.Set(float64(s.Idle))
	DbPoolInuse.Set(float64(s.InUse))
	DbPoolWaitCount.Set(float64(s.WaitCount))
	DbPoolWaitDuration.Set(s.WaitDuration.Seconds())
}

func ObserveRedisStats(s *redis.PoolStats) {
	if s == nil {
		return
	}
	RedisPoolOpen.Set(float64(s.TotalConns))
	RedisPoolIdle.Set(float64(s.IdleConns))
	RedisPoolHits.Set(float64(s.Hits))
	RedisPoolMiss.Set(float64(s.Misses))
	RedisPoolStale.Set(float64(s.StaleConns))
}

// CollectPools samples db (and rdb when non-nil) every interval until ctx is done.
func CollectPools(ctx context.Context, db *sql.DB, rdb *redis.Client, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ObserveDBStats(db.Stats())
			if rdb != nil {
				ObserveRedisStats(rdb.PoolStats())
			}
		}
	}
}

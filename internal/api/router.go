// Package api exposes the reward and settlement services over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ginprom "github.com/zsais/go-gin-prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gopherpay.com/pkg/middleware"
	"gopherpay.com/pkg/ratelimit"
)

type RouterOptions struct {
	ServiceName string
	// Instrument enables the prometheus and otel gin middleware. The gin
	// prometheus collector registers globally, so it is left off in tests.
	Instrument bool
	// Ready reports dependency health for /healthz.
	Ready func() error
	// Limiter throttles /api per user and route when set.
	Limiter *ratelimit.Store
}

func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	if opts.Instrument {
		p := ginprom.NewPrometheus(opts.ServiceName)
		p.Use(r)
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(
		middleware.ReqId(),
		cors.Default(),
		middleware.Recover(),
	)

	r.GET("/healthz", func(c *gin.Context) {
		if opts.Ready != nil {
			if err := opts.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	// ginprom mounts /metrics itself
	if !opts.Instrument {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api", Identity())
	if opts.Limiter != nil {
		api.Use(middleware.RateLimit(opts.Limiter, func(c *gin.Context) string {
			return strconv.FormatInt(userID(c), 10)
		}))
	}
	rewards := api.Group("/rewards")
	{
		rewards.GET("/daily", h.DailyStatus)
		rewards.POST("/daily/claim", h.ClaimDaily)
		rewards.GET("/random", h.RandomStatus)
		rewards.POST("/random/claim", h.ClaimRandom)
	}
	api.GET("/referrals/stats", h.ReferralStats)
	api.POST("/deposits", h.RequestDeposit)
	api.POST("/withdrawals", h.RequestWithdrawal)

	admin := api.Group("/admin")
	{
		admin.GET("/deposits/pending", h.PendingDeposits)
		admin.GET("/withdrawals/pending", h.PendingWithdrawals)
		admin.POST("/deposits/:id/approve", h.ApproveDeposit)
		admin.POST("/deposits/:id/reject", h.RejectDeposit)
		admin.POST("/withdrawals/:id/approve", h.ApproveWithdrawal)
		admin.POST("/withdrawals/:id/reject", h.RejectWithdrawal)
	}
	return r
}

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

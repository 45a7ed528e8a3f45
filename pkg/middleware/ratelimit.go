package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopherpay.com/pkg/common"
	"gopherpay.com/pkg/logger"
	"gopherpay.com/pkg/ratelimit"
)

// RateLimit throttles per caller and route. keyOf names the caller; nil means
// the client IP.
func RateLimit(store *ratelimit.Store, keyOf func(c *gin.Context) string) gin.HandlerFunc {
	if keyOf == nil {
		keyOf = func(c *gin.Context) string { return c.ClientIP() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		caller := keyOf(c)

		if !store.Allow(caller + ":" + route) {
			// expected rejection under load, no stack
			logger.Warn(c.Request.Context(), "http rate limited",
				zap.String("caller", caller),
				zap.String("route", route),
			)
			common.Fail(c, http.StatusTooManyRequests, http.StatusTooManyRequests, "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}

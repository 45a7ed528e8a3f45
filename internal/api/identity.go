package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gopherpay.com/pkg/common"
)

const (
	HeaderUserID = "X-User-Id"
	ctxKeyUserID = "uid"
)

// Identity reads the caller id set by the fronting auth proxy. Requests
// without a positive numeric id are refused.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := strconv.ParseInt(c.GetHeader(HeaderUserID), 10, 64)
		if err != nil || uid <= 0 {
			common.Fail(c, http.StatusUnauthorized, http.StatusUnauthorized, "missing or invalid "+HeaderUserID)
			c.Abort()
			return
		}
		c.Set(ctxKeyUserID, uid)
		c.Next()
	}
}

func userID(c *gin.Context) int64 {
	return c.GetInt64(ctxKeyUserID)
}

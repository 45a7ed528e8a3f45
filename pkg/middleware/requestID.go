package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"gopherpay.com/pkg/common"
)

// ReqId propagates X-Request-Id, minting one when absent, into the gin
// context, the request context (for logger) and the response header.
func ReqId() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(common.HeaderRequestID)
		if rid == "" {
			rid = common.New()
		}
		c.Set(common.CtxKeyRequestID, rid)
		c.Header(common.HeaderRequestID, rid)
		ctx := context.WithValue(c.Request.Context(), common.CtxKeyRequestID, rid)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

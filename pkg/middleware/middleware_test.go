package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopherpay.com/pkg/common"
	"gopherpay.com/pkg/logger"
	"gopherpay.com/pkg/ratelimit"
)

func init() { gin.SetMode(gin.TestMode) }

func TestReqId(t *testing.T) {
	r := gin.New()
	r.Use(ReqId())
	var fromCtx interface{}
	r.GET("/", func(c *gin.Context) {
		fromCtx = c.Request.Context().Value(logger.RequestIdKey)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(common.HeaderRequestID, "rid-1")
	r.ServeHTTP(w, req)
	assert.Equal(t, "rid-1", w.Header().Get(common.HeaderRequestID))
	assert.Equal(t, "rid-1", fromCtx)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(common.HeaderRequestID), 36)
}

func TestRecover(t *testing.T) {
	r := gin.New()
	r.Use(Recover())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp common.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 500, resp.Code)
	assert.Nil(t, resp.Data)
}

func TestRateLimit(t *testing.T) {
	store := ratelimit.NewStore(0, 1, time.Minute)
	r := gin.New()
	r.Use(RateLimit(store, func(c *gin.Context) string { return c.GetHeader("X-Caller") }))
	r.GET("/claim", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	call := func(caller string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/claim", nil)
		req.Header.Set("X-Caller", caller)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, call("a"))
	assert.Equal(t, http.StatusTooManyRequests, call("a"))
	assert.Equal(t, http.StatusNoContent, call("b"))
}

package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopherpay.com/pkg/xerr"
)

func TestFailFromErr(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
		wantMsg    string
	}{
		{"validation", xerr.New(xerr.RequestParamsError, "amount must be positive"), 400, 400, "amount must be positive"},
		{"forbidden", xerr.New(xerr.Forbidden, "SUPPORT may not APPROVE"), 403, 403, "SUPPORT may not APPROVE"},
		{"not found", xerr.New(xerr.RecordNotFound, "deposit not found"), 404, 404, "deposit not found"},
		{"invalid state", xerr.New(xerr.InvalidState, "deposit already APPROVED"), 409, 409, "deposit already APPROVED"},
		{"already claimed", xerr.NewErrCode(xerr.AlreadyClaimed), 409, 410, "already claimed"},
		{"storage hides cause", xerr.Wrap(errors.New("dial tcp 10.0.0.3:3306"), xerr.DbError, "get user failed"), 500, 501, "storage unavailable"},
		{"foreign error", errors.New("boom"), 500, 500, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			FailFromErr(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

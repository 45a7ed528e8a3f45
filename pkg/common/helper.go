package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopherpay.com/pkg/logger"
	"gopherpay.com/pkg/xerr"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    data,
	})
}

func Fail(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// FailFromErr answers with the code carried by err. Client errors echo the
// error message; server errors are logged and answered with a fixed text so
// no storage detail leaks.
func FailFromErr(c *gin.Context, err error) {
	code := xerr.CodeOf(err)
	httpStatus := HTTPStatus(code)
	if httpStatus >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "http error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("biz_code", code),
			zap.Error(err),
		)
		Fail(c, httpStatus, code, xerr.MapErrMsg(code))
		return
	}

	msg := xerr.MapErrMsg(code)
	var ce *xerr.CodeError
	if errors.As(err, &ce) && ce.Msg != "" {
		msg = ce.Msg
	}
	logger.Warn(c.Request.Context(), "http request rejected",
		zap.String("path", c.Request.URL.Path),
		zap.Int("biz_code", code),
		zap.String("message", msg),
	)
	Fail(c, httpStatus, code, msg)
}

// HTTPStatus maps a business code to its HTTP status.
func HTTPStatus(code int) int {
	switch code {
	case xerr.RequestParamsError:
		return http.StatusBadRequest
	case xerr.Forbidden:
		return http.StatusForbidden
	case xerr.RecordNotFound:
		return http.StatusNotFound
	case xerr.InvalidState, xerr.AlreadyClaimed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

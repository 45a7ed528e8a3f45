package xerr

import (
	"errors"
	"fmt"
)

// Common error codes. HTTP-like numbers so the gateway can map them directly.
const (
	OK                 = 200
	ServerCommonError  = 500
	RequestParamsError = 400
	Forbidden          = 403
	RecordNotFound     = 404
	InvalidState       = 409
	AlreadyClaimed     = 410
	DbError            = 501
)

type CodeError struct {
	Code  int    `json:"code"`
	Msg   string `json:"msg"`
	cause error
}

func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("ErrCode:%d, Msg:%s, Cause:%v", e.Code, e.Msg, e.cause)
	}
	return fmt.Sprintf("ErrCode:%d, Msg:%s", e.Code, e.Msg)
}

func (e *CodeError) Unwrap() error { return e.cause }

func New(code int, msg string) error {
	return &CodeError{Code: code, Msg: msg}
}

func NewErrCode(code int) error {
	return &CodeError{Code: code, Msg: MapErrMsg(code)}
}

// Wrap keeps err reachable through errors.Is / errors.As.
func Wrap(err error, code int, msg string) error {
	if err == nil {
		return nil
	}
	return &CodeError{Code: code, Msg: msg, cause: err}
}

// CodeOf returns the code of the first CodeError in the chain, or
// ServerCommonError for foreign errors.
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ServerCommonError
}

func IsCode(err error, code int) bool {
	var ce *CodeError
	return errors.As(err, &ce) && ce.Code == code
}

func MapErrMsg(code int) string {
	switch code {
	case ServerCommonError:
		return "internal error"
	case RequestParamsError:
		return "invalid parameters"
	case Forbidden:
		return "permission denied"
	case RecordNotFound:
		return "record not found"
	case InvalidState:
		return "invalid state"
	case AlreadyClaimed:
		return "already claimed"
	case DbError:
		return "storage unavailable"
	default:
		return "unknown error"
	}
}

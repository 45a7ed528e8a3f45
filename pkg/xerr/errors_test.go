package xerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, OK},
		{"plain", errors.New("boom"), ServerCommonError},
		{"coded", New(RecordNotFound, "deposit not found"), RecordNotFound},
		{"wrapped by fmt", fmt.Errorf("approve: %w", New(InvalidState, "not pending")), InvalidState},
		{"default message", NewErrCode(AlreadyClaimed), AlreadyClaimed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, DbError, "insert claim failed")

	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsCode(err, DbError))
	assert.False(t, IsCode(err, AlreadyClaimed))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Nil(t, Wrap(nil, DbError, "noop"))
}

func TestMapErrMsg(t *testing.T) {
	assert.Equal(t, "already claimed", MapErrMsg(AlreadyClaimed))
	assert.Equal(t, "unknown error", MapErrMsg(12345))
}

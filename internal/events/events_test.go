package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subj)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestNatsPublisher_SubjectAndPayload(t *testing.T) {
	fc := &fakeConn{}
	p := &NatsPublisher{nc: fc, prefix: DefaultSubjectPrefix}
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), Event{
		Type: DepositApproved, OccurredAt: at, UserID: 7, EntityID: 11, ActorID: 1, Amount: "100",
	})
	require.NoError(t, err)
	require.Len(t, fc.subjects, 1)
	assert.Equal(t, "gopherpay.events.deposit.approved", fc.subjects[0])

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(fc.payloads[0], &got))
	assert.Equal(t, "deposit.approved", got["type"])
	assert.Equal(t, float64(7), got["user_id"])
	assert.Equal(t, "100", got["amount"])
	_, hasFee := got["fee"]
	assert.False(t, hasFee)
}

func TestEmit_SwallowsErrors(t *testing.T) {
	p := &NatsPublisher{nc: &fakeConn{err: errors.New("nats: connection closed")}, prefix: DefaultSubjectPrefix}
	assert.NotPanics(t, func() {
		Emit(context.Background(), p, Event{Type: DepositRejected})
		Emit(context.Background(), nil, Event{Type: DepositRejected})
	})
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	Emit(context.Background(), r, Event{Type: DailyRewardClaimed, UserID: 1})
	Emit(context.Background(), r, Event{Type: RandomRewardClaimed, UserID: 1})

	got := r.Events()
	require.Len(t, got, 2)
	assert.Equal(t, RandomRewardClaimed, got[1].Type)
}

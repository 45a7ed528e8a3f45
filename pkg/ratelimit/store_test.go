package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStore_AllowPerKey(t *testing.T) {
	s := NewStore(0, 2, time.Minute)

	assert.True(t, s.Allow("u1"))
	assert.True(t, s.Allow("u1"))
	assert.False(t, s.Allow("u1"), "burst exhausted and no refill")
	assert.True(t, s.Allow("u2"), "keys do not share a bucket")
	assert.Equal(t, 2, s.Len())
}

func TestStore_CleanupDropsIdleKeys(t *testing.T) {
	s := NewStore(1, 1, time.Minute)
	s.Allow("old")
	s.cleanup(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 0, s.Len())

	s.Allow("fresh")
	s.cleanup(time.Now())
	assert.Equal(t, 1, s.Len())
}

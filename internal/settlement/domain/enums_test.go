package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Permissions(t *testing.T) {
	tests := []struct {
		role       Role
		canApprove bool
		canReject  bool
	}{
		{RoleUser, false, false},
		{RoleAdmin, true, true},
		{RoleSupport, false, true},
		{RoleAccounting, true, true},
		{Role(9), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			assert.Equal(t, tt.canApprove, tt.role.CanApprove())
			assert.Equal(t, tt.canReject, tt.role.CanReject())
		})
	}
}

func TestRole_TextRoundTrip(t *testing.T) {
	b, err := json.Marshal(struct {
		Role Role `json:"role"`
	}{RoleAccounting})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"ACCOUNTING"}`, string(b))

	var out struct {
		Role Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"SUPPORT"}`), &out))
	assert.Equal(t, RoleSupport, out.Role)

	assert.Error(t, json.Unmarshal([]byte(`{"role":"ROOT"}`), &out))
	assert.False(t, Role(7).Valid())
}

func TestTxStatus(t *testing.T) {
	assert.False(t, TxStatusPending.Terminal())
	assert.True(t, TxStatusApproved.Terminal())
	assert.True(t, TxStatusRejected.Terminal())

	s, err := ParseTxStatus("REJECTED")
	require.NoError(t, err)
	assert.Equal(t, TxStatusRejected, s)

	_, err = ParseTxStatus("pending")
	assert.Error(t, err)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		invites int64
		want    Tier
	}{
		{0, TierBronze},
		{4, TierBronze},
		{5, TierSilver},
		{19, TierSilver},
		{20, TierGold},
		{49, TierGold},
		{50, TierPlatinum},
		{1000, TierPlatinum},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.invites), "invites=%d", tt.invites)
	}
	assert.Equal(t, TierSilver, ReferralStats{InviteCount: 7}.Tier())
}

package reward

import (
	"context"
	"strings"

	"gopherpay.com/internal/settlement/domain"
	"gopherpay.com/pkg/xerr"
)

type ReferralStats struct {
	UserID      int64       `json:"user_id"`
	Code        string      `json:"code,omitempty"`
	InviteCount int64       `json:"invite_count"`
	Tier        domain.Tier `json:"tier"`
}

type ReferralStore interface {
	domain.ReferralRepo
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// ReferralService is read-only: it reports a user's referral standing and
// resolves codes entered at signup.
type ReferralService struct {
	store ReferralStore
}

func NewReferralService(store ReferralStore) *ReferralService {
	return &ReferralService{store: store}
}

func (s *ReferralService) Stats(ctx context.Context, uid int64) (*ReferralStats, error) {
	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.GetReferralStats(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := &ReferralStats{UserID: uid, InviteCount: stats.InviteCount, Tier: stats.Tier()}
	if user.ReferralCode != nil {
		out.Code = *user.ReferralCode
	}
	return out, nil
}

// ResolveCode returns the owner of an active code.
func (s *ReferralService) ResolveCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, xerr.New(xerr.RequestParamsError, "referral code is empty")
	}
	return s.store.GetReferralCode(ctx, code)
}

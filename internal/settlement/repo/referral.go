package repo

import (
	"context"
	"errors"

	"gopherpay.com/internal/settlement/domain"
	"gopherpay.com/pkg/xerr"
	"gorm.io/gorm"
)

// GetReferralCode returns an active code. Inactive codes look the same as
// unknown ones to callers.
func (r *Repo) GetReferralCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	var rc domain.ReferralCode
	err := r.getDb(ctx).Where("code = ? AND is_active = ?", code, true).Take(&rc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.RecordNotFound, "referral code not found")
		}
		return nil, storageErr(err, "get referral code failed")
	}
	return &rc, nil
}

// GetReferralStats returns zero counts for users nobody has signed up under yet.
func (r *Repo) GetReferralStats(ctx context.Context, uid int64) (*domain.ReferralStats, error) {
	var s domain.ReferralStats
	err := r.getDb(ctx).Where("user_id = ?", uid).Take(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.ReferralStats{UserID: uid}, nil
		}
		return nil, storageErr(err, "get referral stats failed")
	}
	return &s, nil
}

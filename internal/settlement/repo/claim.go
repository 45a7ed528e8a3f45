package repo

import (
	"context"
	"errors"
	"time"

	"gopherpay.com/internal/settlement/domain"
	"gopherpay.com/pkg/xerr"
	"gorm.io/gorm"
)

func (r *Repo) InsertDailyClaim(ctx context.Context, c *domain.DailyRewardClaim) error {
	return insertClaim(r.getDb(ctx), c, "daily reward")
}

func (r *Repo) InsertRandomClaim(ctx context.Context, c *domain.RandomRewardClaim) error {
	return insertClaim(r.getDb(ctx), c, "random reward")
}

// insertClaim leans on the (user_id, claim_date) unique index: the losing
// writer of a race gets AlreadyClaimed instead of a second row.
func insertClaim(db *gorm.DB, claim interface{}, kind string) error {
	err := db.Create(claim).Error
	if err == nil {
		return nil
	}
	if isDuplicateKey(err) {
		return xerr.New(xerr.AlreadyClaimed, kind+" already claimed today")
	}
	return storageErr(err, "insert "+kind+" claim failed")
}

func (r *Repo) FindDailyClaim(ctx context.Context, uid int64, day time.Time) (*domain.DailyRewardClaim, bool, error) {
	var c domain.DailyRewardClaim
	found, err := findClaim(r.getDb(ctx), &c, uid, day)
	if !found {
		return nil, false, err
	}
	return &c, true, nil
}

func (r *Repo) FindRandomClaim(ctx context.Context, uid int64, day time.Time) (*domain.RandomRewardClaim, bool, error) {
	var c domain.RandomRewardClaim
	found, err := findClaim(r.getDb(ctx), &c, uid, day)
	if !found {
		return nil, false, err
	}
	return &c, true, nil
}

func findClaim(db *gorm.DB, dest interface{}, uid int64, day time.Time) (bool, error) {
	err := db.Where("user_id = ? AND claim_date = ?", uid, day.UTC()).Take(dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, storageErr(err, "find claim failed")
	}
	return true, nil
}

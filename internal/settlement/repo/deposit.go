package repo

import (
	"context"
	"errors"
	"time"

	"gopherpay.com/internal/settlement/domain"
	"gopherpay.com/pkg/orm"
	"gopherpay.com/pkg/xerr"
	"gorm.io/gorm"
)

func (r *Repo) CreateDeposit(ctx context.Context, d *domain.Deposit) error {
	if err := r.getDb(ctx).Create(d).Error; err != nil {
		return storageErr(err, "create deposit failed")
	}
	return nil
}

func (r *Repo) GetDeposit(ctx context.Context, id int64) (*domain.Deposit, error) {
	var d domain.Deposit
	err := r.getDb(ctx).Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.RecordNotFound, "deposit not found")
		}
		return nil, storageErr(err, "get deposit failed")
	}
	return &d, nil
}

// TransitionDeposit only matches PENDING rows, so of two concurrent
// settlements exactly one sees RowsAffected == 1.
func (r *Repo) TransitionDeposit(ctx context.Context, id int64, status domain.TxStatus, at time.Time) error {
	res := r.getDb(ctx).Model(&domain.Deposit{}).
		Where("id = ? AND status = ?", id, domain.TxStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"effective_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return storageErr(res.Error, "update deposit status failed")
	}
	if res.RowsAffected == 0 {
		return xerr.New(xerr.InvalidState, "deposit is not pending")
	}
	return nil
}

func (r *Repo) ListDepositsByStatus(ctx context.Context, status domain.TxStatus, page, limit int) ([]*domain.Deposit, error) {
	var list []*domain.Deposit
	q := r.getDb(ctx).Model(&domain.Deposit{}).Where("status = ?", status).Order("id ASC")
	if err := orm.ApplyPagination(q, page, limit).Find(&list).Error; err != nil {
		return nil, storageErr(err, "list deposits failed")
	}
	return list, nil
}

package repo

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gopherpay.com/internal/settlement/domain"
	"gopherpay.com/pkg/orm"
	"gopherpay.com/pkg/xerr"
	"gorm.io/gorm"
)

func (r *Repo) CreateWithdrawal(ctx context.Context, w *domain.Withdrawal) error {
	if err := r.getDb(ctx).Create(w).Error; err != nil {
		return storageErr(err, "create withdrawal failed")
	}
	return nil
}

func (r *Repo) GetWithdrawal(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := r.getDb(ctx).Where("id = ?", id).First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.RecordNotFound, "withdrawal not found")
		}
		return nil, storageErr(err, "get withdrawal failed")
	}
	return &w, nil
}

func (r *Repo) TransitionWithdrawal(ctx context.Context, id int64, status domain.TxStatus, fee, net decimal.Decimal, at time.Time) error {
	res := r.getDb(ctx).Model(&domain.Withdrawal{}).
		Where("id = ? AND status = ?", id, domain.TxStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"fee":          fee,
			"net_amount":   net,
			"effective_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return storageErr(res.Error, "update withdrawal status failed")
	}
	if res.RowsAffected == 0 {
		return xerr.New(xerr.InvalidState, "withdrawal is not pending")
	}
	return nil
}

func (r *Repo) ListWithdrawalsByStatus(ctx context.Context, status domain.TxStatus, page, limit int) ([]*domain.Withdrawal, error) {
	var list []*domain.Withdrawal
	q := r.getDb(ctx).Model(&domain.Withdrawal{}).Where("status = ?", status).Order("id ASC")
	if err := orm.ApplyPagination(q, page, limit).Find(&list).Error; err != nil {
		return nil, storageErr(err, "list withdrawals failed")
	}
	return list, nil
}

package repo

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gopherpay.com/internal/settlement/domain"
	"gopherpay.com/pkg/xerr"
	"gorm.io/gorm"
)

// Amounts are cast on the SQL side so MySQL does not fall back to DOUBLE
// arithmetic when the bound parameter arrives as a string.
const decimalParam = "CAST(? AS DECIMAL(36,18))"

func (r *Repo) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := r.getDb(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.RecordNotFound, "user not found")
		}
		return nil, storageErr(err, "get user failed")
	}
	return &user, nil
}

// CreditBalance: UPDATE users SET balance = balance + ? WHERE id = ?
func (r *Repo) CreditBalance(ctx context.Context, uid int64, amount decimal.Decimal) error {
	res := r.getDb(ctx).Model(&domain.User{}).
		Where("id = ?", uid).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + "+decimalParam, amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return storageErr(res.Error, "credit balance failed")
	}
	if res.RowsAffected == 0 {
		return xerr.New(xerr.RecordNotFound, "user not found")
	}
	return nil
}

// DebitBalance: UPDATE users SET balance = balance - ? WHERE id = ? AND balance >= ?
func (r *Repo) DebitBalance(ctx context.Context, uid int64, amount decimal.Decimal) error {
	res := r.getDb(ctx).Model(&domain.User{}).
		Where("id = ? AND balance >= "+decimalParam, uid, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - "+decimalParam, amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return storageErr(res.Error, "debit balance failed")
	}
	if res.RowsAffected == 0 {
		// Tell a missing user apart from a short balance.
		if _, err := r.GetUser(ctx, uid); err != nil {
			return err
		}
		return xerr.New(xerr.InvalidState, "insufficient balance")
	}
	return nil
}

func (r *Repo) MarkFirstDeposit(ctx context.Context, uid int64, at time.Time) error {
	err := r.getDb(ctx).Model(&domain.User{}).
		Where("id = ? AND first_deposit_at IS NULL", uid).
		Update("first_deposit_at", at).Error
	if err != nil {
		return storageErr(err, "mark first deposit failed")
	}
	return nil
}

func (r *Repo) MarkWithdrawal(ctx context.Context, uid int64, at time.Time) error {
	err := r.getDb(ctx).Model(&domain.User{}).
		Where("id = ?", uid).
		Update("last_withdrawal_at", at).Error
	if err != nil {
		return storageErr(err, "mark withdrawal failed")
	}
	return nil
}

package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gopherpay.com/internal/settlement/domain"
	"gopherpay.com/pkg/xerr"
	"gorm.io/gorm"
)

type txKey struct{}

// Repo implements every store interface of the domain package on one gorm
// handle so a service can span them with a single Transaction.
type Repo struct {
	db *gorm.DB
}

var (
	_ domain.SettlementStore = (*Repo)(nil)
	_ domain.RewardStore     = (*Repo)(nil)
	_ domain.ReferralRepo    = (*Repo)(nil)
	_ domain.PolicyRepo      = (*Repo)(nil)
)

func New(db *gorm.DB) *Repo { return &Repo{db: db} }

// Transaction stores the tx handle in the context; getDb picks it up so
// repository calls made with txCtx join the transaction. Nested calls become
// savepoints.
func (r *Repo) Transaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return r.getDb(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	})
}

func (r *Repo) getDb(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// Models lists every table owned by this repository, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Deposit{},
		&domain.Withdrawal{},
		&domain.DailyRewardClaim{},
		&domain.RandomRewardClaim{},
		&domain.AuditLog{},
		&domain.ReferralCode{},
		&domain.ReferralStats{},
		&domain.PolicyRow{},
	}
}

// AutoMigrate creates or updates the tables. Production schemas are managed
// outside the service; this is for local runs and tests.
func (r *Repo) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(Models()...)
}

// isDuplicateKey recognises a unique-index violation from any supported
// driver. gorm translates most of them when TranslateError is on; the driver
// checks cover handles opened without it.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func storageErr(err error, msg string) error {
	return xerr.Wrap(err, xerr.DbError, msg)
}

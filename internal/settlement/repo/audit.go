package repo

import (
	"context"

	"gopherpay.com/internal/settlement/domain"
)

func (r *Repo) AppendAudit(ctx context.Context, entry *domain.AuditLog) error {
	if err := r.getDb(ctx).Create(entry).Error; err != nil {
		return storageErr(err, "append audit log failed")
	}
	return nil
}

func (r *Repo) ListAudit(ctx context.Context, kind domain.TxKind, entityID int64) ([]*domain.AuditLog, error) {
	var list []*domain.AuditLog
	err := r.getDb(ctx).
		Where("entity_type = ? AND entity_id = ?", kind, entityID).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, storageErr(err, "list audit logs failed")
	}
	return list, nil
}

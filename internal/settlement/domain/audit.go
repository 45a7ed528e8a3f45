package domain

import "time"

// AuditLog is one admin action. Rows are only ever inserted.
type AuditLog struct {
	ID         int64
	ActorID    int64       `gorm:"index;not null"`
	EntityType TxKind      `gorm:"index:idx_audit_entity;size:32;not null"`
	EntityID   int64       `gorm:"index:idx_audit_entity;not null"`
	Action     AuditAction `gorm:"size:32;not null"`
	Before     string      `gorm:"type:text"`
	After      string      `gorm:"type:text"`
	Reason     string      `gorm:"size:255"`
	CreatedAt  time.Time
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

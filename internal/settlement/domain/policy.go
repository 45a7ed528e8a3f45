package domain

import "time"

// PolicyRow is one key/value economic parameter, maintained by operators.
type PolicyRow struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"size:255;not null"`
	UpdatedAt time.Time
}

func (PolicyRow) TableName() string {
	return "policies"
}

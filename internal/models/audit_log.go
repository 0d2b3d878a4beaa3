package models

import "time"

// AuditLog records a mutating operation performed by a user. Rows are
// append-only; the service never updates or deletes them.
type AuditLog struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	Action      string    `json:"action" gorm:"size:100"`
	Description string    `json:"description" gorm:"type:text"`
	Timestamp   time.Time `json:"timestamp" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

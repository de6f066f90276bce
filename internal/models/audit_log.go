package models

import "time"

// AuditLog is an immutable append-only record of a privileged action.
// UserID is nullable for system-originated entries. Rows weakly
// reference their entity by id only and survive its deletion.
type AuditLog struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     *uint  `gorm:"index"`
	Action     string `gorm:"size:64;index;not null"`
	Details    string `gorm:"type:text"` // JSON payload
	IPAddress  string `gorm:"size:64"`
	EntityType string `gorm:"size:32"`
	EntityID   *uint  `gorm:"index"`
	CreatedAt  time.Time `gorm:"index"`
}

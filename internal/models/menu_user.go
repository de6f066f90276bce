package models

import "time"

// MenuUser is an end user of one menu, provisioned through the
// payment-key gateway. One row per (menu, email).
type MenuUser struct {
	ID              uint   `gorm:"primaryKey"`
	MenuID          uint   `gorm:"uniqueIndex:idx_menu_user_email;not null"`
	Email           string `gorm:"uniqueIndex:idx_menu_user_email;size:255;not null"`
	HWID            string `gorm:"size:128"`
	IsBlacklisted   bool   `gorm:"index;not null;default:false"`
	BlacklistReason string `gorm:"size:255"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DebugLog is a client-submitted diagnostic line, scoped to a menu and
// optionally linked to one of its users.
type DebugLog struct {
	ID         uint   `gorm:"primaryKey"`
	MenuID     uint   `gorm:"index;not null"`
	MenuUserID *uint  `gorm:"index"`
	Details    string `gorm:"type:text;not null"`
	IPAddress  string `gorm:"size:64"`
	CreatedAt  time.Time
}

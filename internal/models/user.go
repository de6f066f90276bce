package models

import "time"

// Roles. Accounts are either platform operators or menu developers.
const (
	RoleAdmin   = "admin"
	RoleMenuDev = "menu_dev"
)

// User represents an account. Email matching is case-insensitive
// (queries go through LOWER(email)). Accounts are never hard-deleted;
// deactivation flips IsActive and revokes all sessions.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	DisplayName  string `gorm:"size:64;not null"`
	Role         string `gorm:"size:16;index;not null;default:menu_dev"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the account has the operator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

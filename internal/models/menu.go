package models

import (
	"time"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/lifecycle"
)

// Menu is the managed resource: a named Lua artifact with two
// independent code slots and three static API keys. The key columns
// carry distinct trust scopes and are never interchangeable:
// dev/build keys grant code delivery only, the payment key grants the
// menu-user operations of the external gateway.
type Menu struct {
	ID            uint             `gorm:"primaryKey"`
	Name          string           `gorm:"size:64;not null"`
	OwnerID       uint             `gorm:"index;not null"`
	Status        lifecycle.Status `gorm:"size:32;index;not null;default:pending_approval"`
	DevCode       string           `gorm:"type:text"`
	BuildCode     string           `gorm:"type:text"`
	APIKeyDev     string           `gorm:"uniqueIndex;size:64;not null"`
	APIKeyBuild   string           `gorm:"uniqueIndex;size:64;not null"`
	PaymentAPIKey string           `gorm:"uniqueIndex;size:64;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Owner User `gorm:"constraint:OnDelete:CASCADE"`
}

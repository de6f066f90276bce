package models

import "time"

// Deletion request resolutions. A request starts pending and is
// resolved exactly once.
const (
	DeletionPending     = "pending"
	DeletionApproved    = "approved"
	DeletionRejected    = "rejected"
	DeletionTransferred = "transferred"
)

// DeletionRequest is an owner-submitted request to remove a menu.
// Creating one forces the menu into deletion_requested, which blocks
// owner lifecycle toggles until an admin resolves it.
type DeletionRequest struct {
	ID              uint   `gorm:"primaryKey"`
	MenuID          uint   `gorm:"index;not null"`
	RequesterID     uint   `gorm:"index;not null"`
	Reason          string `gorm:"type:text;not null"`
	Status          string `gorm:"size:16;index;not null;default:pending"`
	AdminID         *uint  `gorm:"index"`
	AdminResponse   string `gorm:"size:1024"`
	TransferToEmail string `gorm:"size:255"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

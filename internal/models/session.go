package models

import "time"

// Session binds an opaque bearer token to a user. A session is valid
// iff now < ExpiresAt and the owning account is active. Expiry is
// absolute from issuance; there is no sliding refresh.
type Session struct {
	ID                 string    `gorm:"primaryKey;size:36"` // UUID
	UserID             uint      `gorm:"index;not null"`
	Token              string    `gorm:"uniqueIndex;size:128;not null"`
	IPAddress          string    `gorm:"size:64"`
	BrowserFingerprint string    `gorm:"size:128"`
	ExpiresAt          time.Time `gorm:"index;not null"`
	CreatedAt          time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

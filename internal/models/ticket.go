package models

import "time"

// Ticket states.
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketClosed     = "closed"
)

// Ticket is a support request, optionally tied to one menu. Clients
// poll for new messages; there is no push channel.
type Ticket struct {
	ID              uint   `gorm:"primaryKey"`
	CreatorID       uint   `gorm:"index;not null"`
	MenuID          *uint  `gorm:"index"`
	Subject         string `gorm:"size:128;not null"`
	Description     string `gorm:"type:text;not null"`
	Status          string `gorm:"size:16;index;not null;default:open"`
	AssignedAdminID *uint  `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TicketMessage is one chat line inside a ticket.
type TicketMessage struct {
	ID        uint   `gorm:"primaryKey"`
	TicketID  uint   `gorm:"index;not null"`
	SenderID  uint   `gorm:"index;not null"`
	Message   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

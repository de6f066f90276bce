package audit

import (
	"context"
	"encoding/json"
	"log"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"

	"gorm.io/gorm"
)

// Details is the structured payload of one audit entry.
type Details map[string]interface{}

// Recorder appends audit entries. Writes are best-effort: the primary
// mutation has already committed when Record runs, and a failed insert
// is logged server-side, never propagated.
type Recorder struct {
	DB *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{DB: db}
}

// Record appends one entry. userID is nil for system-originated
// entries; entityID is nil when the action has no single entity.
func (r *Recorder) Record(ctx context.Context, userID *uint, action string, details Details, ip string, entityType string, entityID *uint) {
	payload := ""
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			log.Printf("audit: marshal details for %q: %v", action, err)
		} else {
			payload = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:     userID,
		Action:     action,
		Details:    payload,
		IPAddress:  ip,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if err := r.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("audit: write %q: %v", action, err)
	}
}

package session

import (
	"context"
	"errors"
	"time"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/audit"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTTL is the absolute session lifetime from issuance.
const DefaultTTL = 24 * time.Hour

// Manager owns the session-token lifecycle. It is the sole gate for
// the internal action API; the external gateway never touches it.
type Manager struct {
	DB       *gorm.DB
	Recorder *audit.Recorder
	TTL      time.Duration
}

func NewManager(db *gorm.DB, rec *audit.Recorder, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{DB: db, Recorder: rec, TTL: ttl}
}

// Issue creates a session for an already-authenticated user and
// returns the bearer token. Expired rows are swept opportunistically
// on each login. Side effect: one "login" audit entry.
func (m *Manager) Issue(ctx context.Context, user *models.User, ip, fingerprint string) (string, *util.APIError) {
	db := m.DB.WithContext(ctx)

	_ = db.Where("expires_at <= ?", time.Now()).Delete(&models.Session{}).Error

	token, err := util.SessionToken()
	if err != nil {
		return "", util.ErrInternal(err)
	}

	s := models.Session{
		ID:                 uuid.NewString(),
		UserID:             user.ID,
		Token:              token,
		IPAddress:          ip,
		BrowserFingerprint: fingerprint,
		ExpiresAt:          time.Now().Add(m.TTL),
	}
	if err := db.Create(&s).Error; err != nil {
		return "", util.ErrInternal(err)
	}

	m.Recorder.Record(ctx, &user.ID, "login", audit.Details{"method": "email"}, ip, "user", &user.ID)
	return token, nil
}

// Validate resolves a token to its account. Missing or expired tokens
// yield the uniform 401; a live token on a deactivated account yields
// a 403, which the internal dispatcher flattens back to 401.
func (m *Manager) Validate(ctx context.Context, token string) (*models.User, *util.APIError) {
	if token == "" {
		return nil, util.ErrAuth()
	}
	db := m.DB.WithContext(ctx)

	var s models.Session
	err := db.Where("token = ? AND expires_at > ?", token, time.Now()).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAuth()
	}
	if err != nil {
		return nil, util.ErrInternal(err)
	}

	var user models.User
	err = db.First(&user, s.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAuth()
	}
	if err != nil {
		return nil, util.ErrInternal(err)
	}
	if !user.IsActive {
		return nil, util.ErrForbiddenMsg("account is disabled")
	}
	return &user, nil
}

// Revoke deletes the session bound to token. Idempotent: revoking an
// unknown token is a no-op. Writes a "logout" audit entry only when a
// matching session existed.
func (m *Manager) Revoke(ctx context.Context, token, ip string) {
	if token == "" {
		return
	}
	db := m.DB.WithContext(ctx)

	var s models.Session
	if err := db.Where("token = ?", token).First(&s).Error; err != nil {
		return
	}
	m.Recorder.Record(ctx, &s.UserID, "logout", nil, ip, "user", &s.UserID)
	_ = db.Where("token = ?", token).Delete(&models.Session{}).Error
}

// RevokeAllForUser bulk-deletes every session of one account. Invoked
// by the admin deactivation handler; the cascade is what makes
// deactivation take effect immediately.
func (m *Manager) RevokeAllForUser(ctx context.Context, userID uint) error {
	return m.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

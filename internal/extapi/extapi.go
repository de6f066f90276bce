// Package extapi is the external key gateway: a second trust domain,
// independent of sessions, authenticated by per-menu static keys. A
// key matches at most one menu; an unmatched key is always a 401,
// never a silent no-op.
package extapi

import (
	"context"
	"errors"
	"strings"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/lifecycle"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/util"

	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// GetCode delivers a code slot to a loader holding a dev or build key.
// Delivery is status-gated: terminated, paused, pending_approval and
// rejected are hard denies; maintenance signals "temporarily not
// servable" with a 503.
func (s *Service) GetCode(ctx context.Context, key, buildType string) (string, *util.APIError) {
	bt := "dev"
	if buildType == "build" {
		bt = "build"
	}
	keyCol := "api_key_dev"
	if bt == "build" {
		keyCol = "api_key_build"
	}

	var menu models.Menu
	err := s.DB.WithContext(ctx).Where(keyCol+" = ?", key).First(&menu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", util.ErrAuthMsg("invalid API key")
	}
	if err != nil {
		return "", util.ErrInternal(err)
	}

	switch menu.Status {
	case lifecycle.StatusTerminated, lifecycle.StatusPaused,
		lifecycle.StatusPendingApproval, lifecycle.StatusRejected:
		return "", util.ErrForbiddenMsg("menu is " + string(menu.Status))
	case lifecycle.StatusMaintenance:
		return "", util.ErrUnavailable("menu is under maintenance")
	}

	if bt == "build" {
		return menu.BuildCode, nil
	}
	return menu.DevCode, nil
}

// menuByPaymentKey resolves the payment-scoped key. Payment operations
// carry no status gating: they must keep working while the menu is
// paused or under maintenance.
func (s *Service) menuByPaymentKey(ctx context.Context, key string) (*models.Menu, *util.APIError) {
	var menu models.Menu
	err := s.DB.WithContext(ctx).Where("payment_api_key = ?", key).First(&menu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAuthMsg("invalid API key")
	}
	if err != nil {
		return nil, util.ErrInternal(err)
	}
	return &menu, nil
}

// CreateUser provisions an end-user record for the key's menu.
func (s *Service) CreateUser(ctx context.Context, key, email, hwid string) (*models.MenuUser, *util.APIError) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, util.ErrValidation("email required")
	}
	menu, apiErr := s.menuByPaymentKey(ctx, key)
	if apiErr != nil {
		return nil, apiErr
	}

	mu := models.MenuUser{
		MenuID: menu.ID,
		Email:  email,
		HWID:   hwid,
	}
	err := s.DB.WithContext(ctx).Create(&mu).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, util.ErrConflict("user already exists for this menu")
	}
	if err != nil {
		return nil, util.ErrInternal(err)
	}
	return &mu, nil
}

// Blacklist flags a menu user by email.
func (s *Service) Blacklist(ctx context.Context, key, email, reason string) *util.APIError {
	if email == "" {
		return util.ErrValidation("email required")
	}
	menu, apiErr := s.menuByPaymentKey(ctx, key)
	if apiErr != nil {
		return apiErr
	}
	if reason == "" {
		reason = "Blacklisted via API"
	}

	res := s.DB.WithContext(ctx).Model(&models.MenuUser{}).
		Where("menu_id = ? AND email = ?", menu.ID, email).
		Updates(map[string]interface{}{"is_blacklisted": true, "blacklist_reason": reason})
	if res.Error != nil {
		return util.ErrInternal(res.Error)
	}
	if res.RowsAffected == 0 {
		return util.ErrNotFound("user not found")
	}
	return nil
}

// CheckBlacklist reports the blacklist flag and reason for one user.
func (s *Service) CheckBlacklist(ctx context.Context, key, email string) (bool, string, *util.APIError) {
	if email == "" {
		return false, "", util.ErrValidation("email required")
	}
	menu, apiErr := s.menuByPaymentKey(ctx, key)
	if apiErr != nil {
		return false, "", apiErr
	}

	var mu models.MenuUser
	err := s.DB.WithContext(ctx).Where("menu_id = ? AND email = ?", menu.ID, email).First(&mu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, "", util.ErrNotFound("user not found")
	}
	if err != nil {
		return false, "", util.ErrInternal(err)
	}
	return mu.IsBlacklisted, mu.BlacklistReason, nil
}

// CheckUser returns the stored record for one menu user.
func (s *Service) CheckUser(ctx context.Context, key, email string) (*models.MenuUser, *util.APIError) {
	if email == "" {
		return nil, util.ErrValidation("email required")
	}
	menu, apiErr := s.menuByPaymentKey(ctx, key)
	if apiErr != nil {
		return nil, apiErr
	}

	var mu models.MenuUser
	err := s.DB.WithContext(ctx).Where("menu_id = ? AND email = ?", menu.ID, email).First(&mu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound("user not found")
	}
	if err != nil {
		return nil, util.ErrInternal(err)
	}
	return &mu, nil
}

// AppendDebugLog stores a diagnostic line, optionally linked to a
// menu user by email.
func (s *Service) AppendDebugLog(ctx context.Context, key, details, email, ip string) *util.APIError {
	if details == "" {
		return util.ErrValidation("details required")
	}
	menu, apiErr := s.menuByPaymentKey(ctx, key)
	if apiErr != nil {
		return apiErr
	}

	db := s.DB.WithContext(ctx)
	var menuUserID *uint
	if email != "" {
		var mu models.MenuUser
		if err := db.Where("menu_id = ? AND email = ?", menu.ID, email).First(&mu).Error; err == nil {
			menuUserID = &mu.ID
		}
	}

	entry := models.DebugLog{
		MenuID:     menu.ID,
		MenuUserID: menuUserID,
		Details:    details,
		IPAddress:  ip,
	}
	if err := db.Create(&entry).Error; err != nil {
		return util.ErrInternal(err)
	}
	return nil
}

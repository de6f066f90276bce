package handler

import (
	"errors"
	"strings"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/audit"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/authz"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/lifecycle"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Admin handlers. The dispatcher has already enforced the admin role
// for everything in this file.

func (d *Dispatcher) adminGetAllMenus(c *gin.Context, user *models.User, req *actionRequest) {
	db := d.DB.WithContext(c.Request.Context())

	var menus []models.Menu
	if err := db.Order("created_at DESC").Find(&menus).Error; err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	owners := d.ownerProjection(c, menus)
	out := make([]gin.H, 0, len(menus))
	for _, m := range menus {
		out = append(out, gin.H{
			"id":              m.ID,
			"name":            m.Name,
			"status":          m.Status,
			"owner_id":        m.OwnerID,
			"api_key_dev":     m.APIKeyDev,
			"api_key_build":   m.APIKeyBuild,
			"payment_api_key": m.PaymentAPIKey,
			"created_at":      m.CreatedAt,
			"updated_at":      m.UpdatedAt,
			"owner":           owners[m.OwnerID],
		})
	}
	util.Success(c, util.Response{"menus": out})
}

func (d *Dispatcher) adminApproveMenu(c *gin.Context, user *models.User, req *actionRequest) {
	d.adminGate(c, user, req, lifecycle.StatusActive, "admin_approve_menu")
}

func (d *Dispatcher) adminRejectMenu(c *gin.Context, user *models.User, req *actionRequest) {
	d.adminGate(c, user, req, lifecycle.StatusRejected, "admin_reject_menu")
}

// adminGate settles a pending menu one way or the other. Approval and
// rejection only make sense for menus awaiting review, so the write
// is conditional on pending_approval.
func (d *Dispatcher) adminGate(c *gin.Context, user *models.User, req *actionRequest, target lifecycle.Status, action string) {
	if req.MenuID == 0 {
		util.WriteError(c, util.ErrValidation("menu_id required"))
		return
	}
	res := d.DB.WithContext(c.Request.Context()).Model(&models.Menu{}).
		Where("id = ? AND status = ?", req.MenuID, lifecycle.StatusPendingApproval).
		Update("status", target)
	if res.Error != nil {
		util.WriteError(c, util.ErrInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		util.WriteError(c, util.ErrConflict("menu is not awaiting approval"))
		return
	}

	menuID := req.MenuID
	d.Recorder.Record(c.Request.Context(), &user.ID, action,
		audit.Details{"menu_id": menuID}, c.ClientIP(), "menu", &menuID)
	util.Success(c, util.Response{"success": true})
}

// adminTerminateMenu forces terminated from any state.
func (d *Dispatcher) adminTerminateMenu(c *gin.Context, user *models.User, req *actionRequest) {
	if req.MenuID == 0 {
		util.WriteError(c, util.ErrValidation("menu_id required"))
		return
	}
	res := d.DB.WithContext(c.Request.Context()).Model(&models.Menu{}).
		Where("id = ?", req.MenuID).Update("status", lifecycle.StatusTerminated)
	if res.Error != nil {
		util.WriteError(c, util.ErrInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		util.WriteError(c, util.ErrNotFound("menu not found"))
		return
	}

	menuID := req.MenuID
	d.Recorder.Record(c.Request.Context(), &user.ID, "admin_terminate_menu",
		audit.Details{"menu_id": menuID}, c.ClientIP(), "menu", &menuID)
	util.Success(c, util.Response{"success": true})
}

func (d *Dispatcher) adminGetAllUsers(c *gin.Context, user *models.User, req *actionRequest) {
	var users []models.User
	err := d.DB.WithContext(c.Request.Context()).Order("created_at DESC").Find(&users).Error
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":           u.ID,
			"email":        u.Email,
			"display_name": u.DisplayName,
			"role":         u.Role,
			"is_active":    u.IsActive,
			"created_at":   u.CreatedAt,
		})
	}
	util.Success(c, util.Response{"users": out})
}

func (d *Dispatcher) adminCreateUser(c *gin.Context, user *models.User, req *actionRequest) {
	email := strings.TrimSpace(req.Email)
	displayName := strings.TrimSpace(req.DisplayName)
	if email == "" || req.Password == "" || displayName == "" {
		util.WriteError(c, util.ErrValidation("email, password and display_name required"))
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleMenuDev
	}
	if role != models.RoleAdmin && role != models.RoleMenuDev {
		util.WriteError(c, util.ErrValidation("invalid role"))
		return
	}

	hash, err := util.HashPassword(req.Password, d.BcryptCost)
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	newUser := models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         role,
		IsActive:     true,
	}
	dbErr := d.DB.WithContext(c.Request.Context()).Create(&newUser).Error
	if errors.Is(dbErr, gorm.ErrDuplicatedKey) {
		util.WriteError(c, util.ErrConflict("email already registered"))
		return
	}
	if dbErr != nil {
		util.WriteError(c, util.ErrInternal(dbErr))
		return
	}

	d.Recorder.Record(c.Request.Context(), &user.ID, "admin_create_user",
		audit.Details{"email": email, "role": role}, c.ClientIP(), "user", &newUser.ID)
	util.Success(c, util.Response{"user_id": newUser.ID})
}

func (d *Dispatcher) adminToggleUser(c *gin.Context, user *models.User, req *actionRequest) {
	if req.UserID == 0 || req.IsActive == nil {
		util.WriteError(c, util.ErrValidation("user_id and is_active required"))
		return
	}
	if !authz.CanToggleUser(user, req.UserID) {
		util.WriteError(c, util.ErrValidation("cannot toggle your own account"))
		return
	}

	res := d.DB.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", req.UserID).Update("is_active", *req.IsActive)
	if res.Error != nil {
		util.WriteError(c, util.ErrInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		util.WriteError(c, util.ErrNotFound("user not found"))
		return
	}

	// deactivation must take effect immediately: every live session
	// of the account is revoked in the same request
	if !*req.IsActive {
		if err := d.Sessions.RevokeAllForUser(c.Request.Context(), req.UserID); err != nil {
			util.WriteError(c, util.ErrInternal(err))
			return
		}
	}

	userID := req.UserID
	d.Recorder.Record(c.Request.Context(), &user.ID, "admin_toggle_user",
		audit.Details{"user_id": userID, "is_active": *req.IsActive}, c.ClientIP(), "user", &userID)
	util.Success(c, util.Response{"success": true})
}

func (d *Dispatcher) adminGetAuditLogs(c *gin.Context, user *models.User, req *actionRequest) {
	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	var logs []models.AuditLog
	err := d.DB.WithContext(c.Request.Context()).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	users := d.auditUserProjection(c, logs)
	out := make([]gin.H, 0, len(logs))
	for _, l := range logs {
		entry := gin.H{
			"id":          l.ID,
			"user_id":     l.UserID,
			"action":      l.Action,
			"details":     l.Details,
			"ip_address":  l.IPAddress,
			"entity_type": l.EntityType,
			"entity_id":   l.EntityID,
			"created_at":  l.CreatedAt,
		}
		if l.UserID != nil {
			entry["user"] = users[*l.UserID]
		}
		out = append(out, entry)
	}
	util.Success(c, util.Response{"logs": out})
}

func (d *Dispatcher) adminGetDeletionRequests(c *gin.Context, user *models.User, req *actionRequest) {
	db := d.DB.WithContext(c.Request.Context())

	var requests []models.DeletionRequest
	if err := db.Order("created_at DESC").Find(&requests).Error; err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	menuIDs := map[uint]bool{}
	requesterIDs := map[uint]bool{}
	for _, r := range requests {
		menuIDs[r.MenuID] = true
		requesterIDs[r.RequesterID] = true
	}

	menuNames := map[uint]gin.H{}
	if len(menuIDs) > 0 {
		ids := keysOf(menuIDs)
		var menus []models.Menu
		if err := db.Where("id IN ?", ids).Find(&menus).Error; err == nil {
			for _, m := range menus {
				menuNames[m.ID] = gin.H{"id": m.ID, "name": m.Name}
			}
		}
	}
	requesters := map[uint]gin.H{}
	if len(requesterIDs) > 0 {
		ids := keysOf(requesterIDs)
		var users []models.User
		if err := db.Where("id IN ?", ids).Find(&users).Error; err == nil {
			for _, u := range users {
				requesters[u.ID] = gin.H{"id": u.ID, "email": u.Email, "display_name": u.DisplayName}
			}
		}
	}

	out := make([]gin.H, 0, len(requests))
	for _, r := range requests {
		out = append(out, gin.H{
			"id":                r.ID,
			"menu_id":           r.MenuID,
			"requester_id":      r.RequesterID,
			"reason":            r.Reason,
			"status":            r.Status,
			"admin_response":    r.AdminResponse,
			"transfer_to_email": r.TransferToEmail,
			"created_at":        r.CreatedAt,
			"menu":              menuNames[r.MenuID],
			"requester":         requesters[r.RequesterID],
		})
	}
	util.Success(c, util.Response{"requests": out})
}

func (d *Dispatcher) adminHandleDeletion(c *gin.Context, user *models.User, req *actionRequest) {
	aerr := d.Deletions.Resolve(c.Request.Context(), user, req.RequestID,
		req.Decision, req.Response, req.TransferToEmail, c.ClientIP())
	if aerr != nil {
		util.WriteError(c, aerr)
		return
	}
	util.Success(c, util.Response{"success": true})
}

func (d *Dispatcher) adminViewCode(c *gin.Context, user *models.User, req *actionRequest) {
	if req.MenuID == 0 {
		util.WriteError(c, util.ErrValidation("menu_id required"))
		return
	}
	var menu models.Menu
	err := d.DB.WithContext(c.Request.Context()).First(&menu, req.MenuID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.WriteError(c, util.ErrNotFound("menu not found"))
		return
	}
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	code := menu.DevCode
	if req.BuildType == "build" {
		code = menu.BuildCode
	}
	util.Success(c, util.Response{"code": code, "name": menu.Name})
}

func (d *Dispatcher) adminEditCode(c *gin.Context, user *models.User, req *actionRequest) {
	if req.MenuID == 0 {
		util.WriteError(c, util.ErrValidation("menu_id required"))
		return
	}
	column := "dev_code"
	if req.BuildType == "build" {
		column = "build_code"
	}

	res := d.DB.WithContext(c.Request.Context()).Model(&models.Menu{}).
		Where("id = ?", req.MenuID).Update(column, req.Code)
	if res.Error != nil {
		util.WriteError(c, util.ErrInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		util.WriteError(c, util.ErrNotFound("menu not found"))
		return
	}

	menuID := req.MenuID
	d.Recorder.Record(c.Request.Context(), &user.ID, "admin_edit_code",
		audit.Details{"menu_id": menuID, "build_type": req.BuildType}, c.ClientIP(), "menu", &menuID)
	util.Success(c, util.Response{"success": true})
}

func (d *Dispatcher) adminManageMenuUsers(c *gin.Context, user *models.User, req *actionRequest) {
	if req.MenuID == 0 {
		util.WriteError(c, util.ErrValidation("menu_id required"))
		return
	}
	var users []models.MenuUser
	err := d.DB.WithContext(c.Request.Context()).
		Where("menu_id = ?", req.MenuID).Order("created_at DESC").Find(&users).Error
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}
	util.Success(c, util.Response{"users": users})
}

func (d *Dispatcher) ownerProjection(c *gin.Context, menus []models.Menu) map[uint]gin.H {
	idSet := map[uint]bool{}
	for _, m := range menus {
		idSet[m.OwnerID] = true
	}
	result := map[uint]gin.H{}
	if len(idSet) == 0 {
		return result
	}
	var users []models.User
	if err := d.DB.WithContext(c.Request.Context()).Where("id IN ?", keysOf(idSet)).Find(&users).Error; err != nil {
		return result
	}
	for _, u := range users {
		result[u.ID] = gin.H{"id": u.ID, "email": u.Email, "display_name": u.DisplayName}
	}
	return result
}

func (d *Dispatcher) auditUserProjection(c *gin.Context, logs []models.AuditLog) map[uint]gin.H {
	idSet := map[uint]bool{}
	for _, l := range logs {
		if l.UserID != nil {
			idSet[*l.UserID] = true
		}
	}
	result := map[uint]gin.H{}
	if len(idSet) == 0 {
		return result
	}
	var users []models.User
	if err := d.DB.WithContext(c.Request.Context()).Where("id IN ?", keysOf(idSet)).Find(&users).Error; err != nil {
		return result
	}
	for _, u := range users {
		result[u.ID] = gin.H{"id": u.ID, "email": u.Email, "display_name": u.DisplayName}
	}
	return result
}

func keysOf(set map[uint]bool) []uint {
	out := make([]uint, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

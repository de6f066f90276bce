package handler

import (
	"strings"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/audit"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/authz"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/lifecycle"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/lint"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/util"

	"github.com/gin-gonic/gin"
)

// defaultCode is the scaffold every new menu starts from.
const defaultCodeHeader = "-- FiveM Lua Menu: "

const defaultCodeBody = "\n-- Start coding here\n\nCreateThread(function()\n  while true do\n    Wait(0)\n    -- Your menu logic\n  end\nend)\n"

func (d *Dispatcher) getMenus(c *gin.Context, user *models.User, req *actionRequest) {
	db := d.DB.WithContext(c.Request.Context()).Model(&models.Menu{}).
		Select("id", "name", "status", "owner_id", "created_at", "updated_at")
	if !user.IsAdmin() {
		db = db.Where("owner_id = ?", user.ID)
	}

	var menus []models.Menu
	if err := db.Order("created_at DESC").Find(&menus).Error; err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	out := make([]gin.H, 0, len(menus))
	for _, m := range menus {
		out = append(out, gin.H{
			"id":         m.ID,
			"name":       m.Name,
			"status":     m.Status,
			"owner_id":   m.OwnerID,
			"created_at": m.CreatedAt,
			"updated_at": m.UpdatedAt,
		})
	}
	util.Success(c, util.Response{"menus": out})
}

func (d *Dispatcher) createMenu(c *gin.Context, user *models.User, req *actionRequest) {
	if !authz.CanCreateMenu(user) {
		util.WriteError(c, util.ErrForbiddenMsg("only menu devs can create menus"))
		return
	}
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		util.WriteError(c, util.ErrValidation("valid menu name required (min 2 chars)"))
		return
	}

	keyDev, err := util.APIKey("dev")
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}
	keyBuild, err := util.APIKey("build")
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}
	keyPay, err := util.APIKey("pay")
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	menu := models.Menu{
		Name:          name,
		OwnerID:       user.ID,
		Status:        lifecycle.StatusPendingApproval,
		DevCode:       defaultCodeHeader + name + defaultCodeBody,
		APIKeyDev:     keyDev,
		APIKeyBuild:   keyBuild,
		PaymentAPIKey: keyPay,
	}
	if err := d.DB.WithContext(c.Request.Context()).Create(&menu).Error; err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	d.Recorder.Record(c.Request.Context(), &user.ID, "create_menu",
		audit.Details{"name": name}, c.ClientIP(), "menu", &menu.ID)
	util.Success(c, util.Response{"menu": menu})
}

func (d *Dispatcher) getMenu(c *gin.Context, user *models.User, req *actionRequest) {
	menu := d.menuForManage(c, user, req.MenuID)
	if menu == nil {
		return
	}
	util.Success(c, util.Response{"menu": menu})
}

func (d *Dispatcher) updateCode(c *gin.Context, user *models.User, req *actionRequest) {
	d.writeCodeSlot(c, user, req, "dev_code", "update_code", audit.Details{"menu_id": req.MenuID})
}

func (d *Dispatcher) pushToDev(c *gin.Context, user *models.User, req *actionRequest) {
	d.writeCodeSlot(c, user, req, "dev_code", "push_to_dev", audit.Details{"menu_id": req.MenuID})
}

func (d *Dispatcher) pushToBuild(c *gin.Context, user *models.User, req *actionRequest) {
	d.writeCodeSlot(c, user, req, "build_code", "push_to_build", audit.Details{"menu_id": req.MenuID})
}

func (d *Dispatcher) uploadMenu(c *gin.Context, user *models.User, req *actionRequest) {
	column := "dev_code"
	if req.Target == "build" {
		column = "build_code"
	}
	d.writeCodeSlot(c, user, req, column, "upload_menu",
		audit.Details{"menu_id": req.MenuID, "target": req.Target})
}

// writeCodeSlot is the shared body of the four code-mutation actions.
func (d *Dispatcher) writeCodeSlot(c *gin.Context, user *models.User, req *actionRequest, column, action string, details audit.Details) {
	menu := d.menuForManage(c, user, req.MenuID)
	if menu == nil {
		return
	}
	err := d.DB.WithContext(c.Request.Context()).Model(&models.Menu{}).
		Where("id = ?", menu.ID).Update(column, req.Code).Error
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}
	d.Recorder.Record(c.Request.Context(), &user.ID, action, details, c.ClientIP(), "menu", &menu.ID)
	util.Success(c, util.Response{"success": true})
}

func (d *Dispatcher) lintCode(c *gin.Context, user *models.User, req *actionRequest) {
	issues := lint.Check(req.Code)
	if issues == nil {
		issues = []lint.Issue{}
	}
	util.Success(c, util.Response{"issues": issues})
}

func (d *Dispatcher) getAPIInfo(c *gin.Context, user *models.User, req *actionRequest) {
	menu := d.menuForManage(c, user, req.MenuID)
	if menu == nil {
		return
	}
	util.Success(c, util.Response{"api": gin.H{
		"name":            menu.Name,
		"status":          menu.Status,
		"api_key_dev":     menu.APIKeyDev,
		"api_key_build":   menu.APIKeyBuild,
		"payment_api_key": menu.PaymentAPIKey,
	}})
}

func (d *Dispatcher) getMenuStats(c *gin.Context, user *models.User, req *actionRequest) {
	menu := d.menuForManage(c, user, req.MenuID)
	if menu == nil {
		return
	}
	db := d.DB.WithContext(c.Request.Context())

	var totalUsers, blacklisted, debugCount int64
	if err := db.Model(&models.MenuUser{}).Where("menu_id = ?", menu.ID).Count(&totalUsers).Error; err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}
	if err := db.Model(&models.MenuUser{}).
		Where("menu_id = ? AND is_blacklisted = ?", menu.ID, true).Count(&blacklisted).Error; err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}
	if err := db.Model(&models.DebugLog{}).Where("menu_id = ?", menu.ID).Count(&debugCount).Error; err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	util.Success(c, util.Response{
		"name":              menu.Name,
		"status":            menu.Status,
		"created_at":        menu.CreatedAt,
		"updated_at":        menu.UpdatedAt,
		"total_users":       totalUsers,
		"blacklisted_users": blacklisted,
		"debug_logs":        debugCount,
	})
}

func (d *Dispatcher) getDebugLogs(c *gin.Context, user *models.User, req *actionRequest) {
	menu := d.menuForManage(c, user, req.MenuID)
	if menu == nil {
		return
	}
	var logs []models.DebugLog
	err := d.DB.WithContext(c.Request.Context()).
		Where("menu_id = ?", menu.ID).
		Order("created_at DESC").Limit(100).Find(&logs).Error
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}
	util.Success(c, util.Response{"logs": logs})
}

func (d *Dispatcher) updateMenuStatus(c *gin.Context, user *models.User, req *actionRequest) {
	menu := d.menuForManage(c, user, req.MenuID)
	if menu == nil {
		return
	}

	target := lifecycle.Status(req.Status)
	if err := lifecycle.CanTransition(menu.Status, target, user.IsAdmin()); err != nil {
		util.WriteError(c, util.ErrValidation("invalid status transition"))
		return
	}

	// conditional update: a concurrent transition on the same menu
	// invalidates the status we loaded, and the write must lose
	res := d.DB.WithContext(c.Request.Context()).Model(&models.Menu{}).
		Where("id = ? AND status = ?", menu.ID, menu.Status).
		Update("status", target)
	if res.Error != nil {
		util.WriteError(c, util.ErrInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		util.WriteError(c, util.ErrConflict("menu status changed, retry"))
		return
	}

	d.Recorder.Record(c.Request.Context(), &user.ID, "update_menu_status",
		audit.Details{"menu_id": menu.ID, "from": menu.Status, "to": target},
		c.ClientIP(), "menu", &menu.ID)
	util.Success(c, util.Response{"success": true})
}

func (d *Dispatcher) requestDeletion(c *gin.Context, user *models.User, req *actionRequest) {
	dr, aerr := d.Deletions.Request(c.Request.Context(), user, req.MenuID, req.Reason, c.ClientIP())
	if aerr != nil {
		util.WriteError(c, aerr)
		return
	}
	util.Success(c, util.Response{"request": dr})
}

func (d *Dispatcher) getMenuUsers(c *gin.Context, user *models.User, req *actionRequest) {
	menu := d.menuForManage(c, user, req.MenuID)
	if menu == nil {
		return
	}
	var users []models.MenuUser
	err := d.DB.WithContext(c.Request.Context()).
		Where("menu_id = ?", menu.ID).Order("created_at DESC").Find(&users).Error
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}
	util.Success(c, util.Response{"users": users})
}

func (d *Dispatcher) blacklistUser(c *gin.Context, user *models.User, req *actionRequest) {
	mu := d.menuUserForManage(c, user, req.MenuUserID)
	if mu == nil {
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "No reason provided"
	}
	err := d.DB.WithContext(c.Request.Context()).Model(&models.MenuUser{}).
		Where("id = ?", mu.ID).
		Updates(map[string]interface{}{"is_blacklisted": true, "blacklist_reason": reason}).Error
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}
	d.Recorder.Record(c.Request.Context(), &user.ID, "blacklist_user",
		audit.Details{"menu_user_id": mu.ID, "reason": reason}, c.ClientIP(), "menu_user", &mu.ID)
	util.Success(c, util.Response{"success": true})
}

func (d *Dispatcher) unblacklistUser(c *gin.Context, user *models.User, req *actionRequest) {
	mu := d.menuUserForManage(c, user, req.MenuUserID)
	if mu == nil {
		return
	}
	err := d.DB.WithContext(c.Request.Context()).Model(&models.MenuUser{}).
		Where("id = ?", mu.ID).
		Updates(map[string]interface{}{"is_blacklisted": false, "blacklist_reason": ""}).Error
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}
	d.Recorder.Record(c.Request.Context(), &user.ID, "unblacklist_user",
		audit.Details{"menu_user_id": mu.ID}, c.ClientIP(), "menu_user", &mu.ID)
	util.Success(c, util.Response{"success": true})
}

// menuUserForManage resolves a menu user and checks the actor against
// the owning menu, with the same collapsed deny as menuForManage.
func (d *Dispatcher) menuUserForManage(c *gin.Context, user *models.User, menuUserID uint) *models.MenuUser {
	if menuUserID == 0 {
		util.WriteError(c, util.ErrValidation("menu_user_id required"))
		return nil
	}
	db := d.DB.WithContext(c.Request.Context())

	var mu models.MenuUser
	if err := db.First(&mu, menuUserID).Error; err != nil {
		util.WriteError(c, util.ErrForbidden())
		return nil
	}
	var menu models.Menu
	if err := db.First(&menu, mu.MenuID).Error; err != nil {
		util.WriteError(c, util.ErrForbidden())
		return nil
	}
	if !authz.CanManageMenu(user, &menu) {
		util.WriteError(c, util.ErrForbidden())
		return nil
	}
	return &mu
}

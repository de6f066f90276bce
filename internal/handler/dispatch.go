package handler

import (
	"errors"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/audit"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/authz"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/deletion"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/session"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dispatcher is the single entry point of the internal action API:
// one POST body carrying {action, token, ...params}, authenticated
// against the session store, authorized per action, routed through a
// static table.
type Dispatcher struct {
	DB         *gorm.DB
	Sessions   *session.Manager
	Recorder   *audit.Recorder
	Deletions  *deletion.Service
	BcryptCost int
}

func NewDispatcher(db *gorm.DB, sessions *session.Manager, rec *audit.Recorder, del *deletion.Service, bcryptCost int) *Dispatcher {
	return &Dispatcher{
		DB:         db,
		Sessions:   sessions,
		Recorder:   rec,
		Deletions:  del,
		BcryptCost: bcryptCost,
	}
}

// actionRequest is the union of every action's parameters, mirroring
// the flat JSON body the client sends.
type actionRequest struct {
	Action string `json:"action"`
	Token  string `json:"token"`

	MenuID    uint   `json:"menu_id"`
	Code      string `json:"code"`
	BuildType string `json:"build_type"`
	Target    string `json:"target"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`

	RequestID       uint   `json:"request_id"`
	Decision        string `json:"decision"`
	Response        string `json:"response"`
	TransferToEmail string `json:"transfer_to_email"`

	MenuUserID uint `json:"menu_user_id"`

	TicketID    uint   `json:"ticket_id"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Message     string `json:"message"`

	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	UserID      uint   `json:"user_id"`
	IsActive    *bool  `json:"is_active"`

	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type actionFunc func(*Dispatcher, *gin.Context, *models.User, *actionRequest)

type actionSpec struct {
	handler   actionFunc
	adminOnly bool
}

// actions is the closed routing table. Adding an action means adding
// a row here; there is no dynamic fallback.
var actions = map[string]actionSpec{
	// menus
	"get_menus":          {handler: (*Dispatcher).getMenus},
	"create_menu":        {handler: (*Dispatcher).createMenu},
	"get_menu":           {handler: (*Dispatcher).getMenu},
	"update_code":        {handler: (*Dispatcher).updateCode},
	"push_to_dev":        {handler: (*Dispatcher).pushToDev},
	"push_to_build":      {handler: (*Dispatcher).pushToBuild},
	"upload_menu":        {handler: (*Dispatcher).uploadMenu},
	"lint_code":          {handler: (*Dispatcher).lintCode},
	"get_api_info":       {handler: (*Dispatcher).getAPIInfo},
	"get_menu_stats":     {handler: (*Dispatcher).getMenuStats},
	"get_debug_logs":     {handler: (*Dispatcher).getDebugLogs},
	"update_menu_status": {handler: (*Dispatcher).updateMenuStatus},
	"request_deletion":   {handler: (*Dispatcher).requestDeletion},

	// menu users
	"get_menu_users":   {handler: (*Dispatcher).getMenuUsers},
	"blacklist_user":   {handler: (*Dispatcher).blacklistUser},
	"unblacklist_user": {handler: (*Dispatcher).unblacklistUser},

	// tickets
	"create_ticket":        {handler: (*Dispatcher).createTicket},
	"get_tickets":          {handler: (*Dispatcher).getTickets},
	"get_ticket_messages":  {handler: (*Dispatcher).getTicketMessages},
	"send_ticket_message":  {handler: (*Dispatcher).sendTicketMessage},
	"update_ticket_status": {handler: (*Dispatcher).updateTicketStatus, adminOnly: true},

	// admin
	"admin_get_all_menus":         {handler: (*Dispatcher).adminGetAllMenus, adminOnly: true},
	"admin_approve_menu":          {handler: (*Dispatcher).adminApproveMenu, adminOnly: true},
	"admin_reject_menu":           {handler: (*Dispatcher).adminRejectMenu, adminOnly: true},
	"admin_terminate_menu":        {handler: (*Dispatcher).adminTerminateMenu, adminOnly: true},
	"admin_get_all_users":         {handler: (*Dispatcher).adminGetAllUsers, adminOnly: true},
	"admin_create_user":           {handler: (*Dispatcher).adminCreateUser, adminOnly: true},
	"admin_toggle_user":           {handler: (*Dispatcher).adminToggleUser, adminOnly: true},
	"admin_get_audit_logs":        {handler: (*Dispatcher).adminGetAuditLogs, adminOnly: true},
	"admin_get_deletion_requests": {handler: (*Dispatcher).adminGetDeletionRequests, adminOnly: true},
	"admin_handle_deletion":       {handler: (*Dispatcher).adminHandleDeletion, adminOnly: true},
	"admin_view_code":             {handler: (*Dispatcher).adminViewCode, adminOnly: true},
	"admin_edit_code":             {handler: (*Dispatcher).adminEditCode, adminOnly: true},
	"admin_manage_menu_users":     {handler: (*Dispatcher).adminManageMenuUsers, adminOnly: true},
}

// Handle authenticates, authorizes and routes one request.
func (d *Dispatcher) Handle(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.WriteError(c, util.ErrValidation("malformed request body"))
		return
	}

	user, aerr := d.Sessions.Validate(c.Request.Context(), req.Token)
	if aerr != nil {
		// the internal API answers every authentication failure,
		// inactive account included, with the uniform 401
		util.WriteError(c, util.ErrAuth())
		return
	}

	spec, ok := actions[req.Action]
	if !ok {
		util.WriteError(c, util.ErrValidation("unknown action: "+req.Action))
		return
	}
	if spec.adminOnly && !user.IsAdmin() {
		util.WriteError(c, util.ErrForbiddenMsg("admin only"))
		return
	}

	spec.handler(d, c, user, &req)
}

// menuForManage loads a menu and enforces the owner-or-admin rule.
// A missing menu and a foreign menu fail identically, so callers
// cannot use the difference to confirm that an id exists. Writes the
// error response itself and returns nil on failure.
func (d *Dispatcher) menuForManage(c *gin.Context, user *models.User, menuID uint) *models.Menu {
	if menuID == 0 {
		util.WriteError(c, util.ErrValidation("menu_id required"))
		return nil
	}
	var menu models.Menu
	err := d.DB.WithContext(c.Request.Context()).First(&menu, menuID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.WriteError(c, util.ErrForbidden())
		return nil
	}
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return nil
	}
	if !authz.CanManageMenu(user, &menu) {
		util.WriteError(c, util.ErrForbidden())
		return nil
	}
	return &menu
}

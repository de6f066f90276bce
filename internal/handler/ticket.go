package handler

import (
	"errors"
	"strings"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/audit"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/authz"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (d *Dispatcher) createTicket(c *gin.Context, user *models.User, req *actionRequest) {
	subject := strings.TrimSpace(req.Subject)
	description := strings.TrimSpace(req.Description)
	if subject == "" || description == "" {
		util.WriteError(c, util.ErrValidation("subject and description required"))
		return
	}

	ticket := models.Ticket{
		CreatorID:   user.ID,
		Subject:     subject,
		Description: description,
		Status:      models.TicketOpen,
	}
	if req.MenuID != 0 {
		menuID := req.MenuID
		ticket.MenuID = &menuID
	}
	if err := d.DB.WithContext(c.Request.Context()).Create(&ticket).Error; err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	d.Recorder.Record(c.Request.Context(), &user.ID, "create_ticket",
		audit.Details{"subject": subject}, c.ClientIP(), "ticket", &ticket.ID)
	util.Success(c, util.Response{"ticket": ticket})
}

func (d *Dispatcher) getTickets(c *gin.Context, user *models.User, req *actionRequest) {
	db := d.DB.WithContext(c.Request.Context()).Model(&models.Ticket{})
	if !user.IsAdmin() {
		db = db.Where("creator_id = ?", user.ID)
	}
	var tickets []models.Ticket
	if err := db.Order("created_at DESC").Find(&tickets).Error; err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}
	util.Success(c, util.Response{"tickets": tickets})
}

func (d *Dispatcher) getTicketMessages(c *gin.Context, user *models.User, req *actionRequest) {
	ticket := d.ticketForAccess(c, user, req.TicketID)
	if ticket == nil {
		return
	}
	db := d.DB.WithContext(c.Request.Context())

	var msgs []models.TicketMessage
	if err := db.Where("ticket_id = ?", ticket.ID).Order("created_at ASC").Find(&msgs).Error; err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	senders := d.senderProjection(c, msgs)
	out := make([]gin.H, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, gin.H{
			"id":         m.ID,
			"ticket_id":  m.TicketID,
			"sender_id":  m.SenderID,
			"message":    m.Message,
			"created_at": m.CreatedAt,
			"sender":     senders[m.SenderID],
		})
	}
	util.Success(c, util.Response{"messages": out, "ticket": ticket})
}

func (d *Dispatcher) sendTicketMessage(c *gin.Context, user *models.User, req *actionRequest) {
	if strings.TrimSpace(req.Message) == "" {
		util.WriteError(c, util.ErrValidation("message required"))
		return
	}
	ticket := d.ticketForAccess(c, user, req.TicketID)
	if ticket == nil {
		return
	}
	db := d.DB.WithContext(c.Request.Context())

	msg := models.TicketMessage{
		TicketID: ticket.ID,
		SenderID: user.ID,
		Message:  req.Message,
	}
	if err := db.Create(&msg).Error; err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	// first admin reply claims the ticket
	if user.IsAdmin() && ticket.Status == models.TicketOpen {
		_ = db.Model(&models.Ticket{}).Where("id = ?", ticket.ID).
			Updates(map[string]interface{}{
				"status":            models.TicketInProgress,
				"assigned_admin_id": user.ID,
			}).Error
	}

	util.Success(c, util.Response{"message": gin.H{
		"id":         msg.ID,
		"ticket_id":  msg.TicketID,
		"sender_id":  msg.SenderID,
		"message":    msg.Message,
		"created_at": msg.CreatedAt,
		"sender": gin.H{
			"id":           user.ID,
			"display_name": user.DisplayName,
			"role":         user.Role,
		},
	}})
}

func (d *Dispatcher) updateTicketStatus(c *gin.Context, user *models.User, req *actionRequest) {
	switch req.Status {
	case models.TicketOpen, models.TicketInProgress, models.TicketClosed:
	default:
		util.WriteError(c, util.ErrValidation("invalid ticket status"))
		return
	}
	if req.TicketID == 0 {
		util.WriteError(c, util.ErrValidation("ticket_id required"))
		return
	}

	res := d.DB.WithContext(c.Request.Context()).Model(&models.Ticket{}).
		Where("id = ?", req.TicketID).Update("status", req.Status)
	if res.Error != nil {
		util.WriteError(c, util.ErrInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		util.WriteError(c, util.ErrNotFound("ticket not found"))
		return
	}

	ticketID := req.TicketID
	d.Recorder.Record(c.Request.Context(), &user.ID, "update_ticket_status",
		audit.Details{"ticket_id": ticketID, "status": req.Status}, c.ClientIP(), "ticket", &ticketID)
	util.Success(c, util.Response{"success": true})
}

func (d *Dispatcher) ticketForAccess(c *gin.Context, user *models.User, ticketID uint) *models.Ticket {
	if ticketID == 0 {
		util.WriteError(c, util.ErrValidation("ticket_id required"))
		return nil
	}
	var ticket models.Ticket
	err := d.DB.WithContext(c.Request.Context()).First(&ticket, ticketID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.WriteError(c, util.ErrForbidden())
		return nil
	}
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return nil
	}
	if !authz.CanAccessTicket(user, &ticket) {
		util.WriteError(c, util.ErrForbidden())
		return nil
	}
	return &ticket
}

// senderProjection maps sender ids to the minimal public shape shown
// in ticket chats.
func (d *Dispatcher) senderProjection(c *gin.Context, msgs []models.TicketMessage) map[uint]gin.H {
	idSet := map[uint]bool{}
	for _, m := range msgs {
		idSet[m.SenderID] = true
	}
	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	result := make(map[uint]gin.H, len(ids))
	if len(ids) == 0 {
		return result
	}
	var users []models.User
	if err := d.DB.WithContext(c.Request.Context()).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return result
	}
	for _, u := range users {
		result[u.ID] = gin.H{"id": u.ID, "display_name": u.DisplayName, "role": u.Role}
	}
	return result
}

package handler

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/session"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler serves admin audit-log downloads. Downloads are GET
// requests, so the token may arrive as a bearer header or as a
// ?token= query parameter (browsers cannot set headers on navigation).
type ExportHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

func NewExportHandler(db *gorm.DB, sessions *session.Manager) *ExportHandler {
	return &ExportHandler{DB: db, Sessions: sessions}
}

const exportLimit = 10000

// ExportAudit streams the newest audit entries as CSV (default) or
// XLSX (?format=xlsx). Admin only.
func (h *ExportHandler) ExportAudit(c *gin.Context) {
	token := bearerValue(c)
	if token == "" {
		token = c.Query("token")
	}
	user, aerr := h.Sessions.Validate(c.Request.Context(), token)
	if aerr != nil {
		util.WriteError(c, util.ErrAuth())
		return
	}
	if !user.IsAdmin() {
		util.WriteError(c, util.ErrForbiddenMsg("admin only"))
		return
	}

	var logs []models.AuditLog
	err := h.DB.WithContext(c.Request.Context()).
		Order("created_at DESC").Limit(exportLimit).Find(&logs).Error
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	if c.Query("format") == "xlsx" {
		h.writeXLSX(c, logs)
		return
	}
	h.writeCSV(c, logs)
}

var exportHeaders = []string{"ID", "User ID", "Action", "Entity Type", "Entity ID", "IP", "Details", "Created At"}

func exportRow(l models.AuditLog) []string {
	userID := ""
	if l.UserID != nil {
		userID = strconv.FormatUint(uint64(*l.UserID), 10)
	}
	entityID := ""
	if l.EntityID != nil {
		entityID = strconv.FormatUint(uint64(*l.EntityID), 10)
	}
	return []string{
		strconv.FormatUint(uint64(l.ID), 10),
		userID,
		l.Action,
		l.EntityType,
		entityID,
		l.IPAddress,
		l.Details,
		l.CreatedAt.Format(time.RFC3339),
	}
}

func (h *ExportHandler) writeCSV(c *gin.Context, logs []models.AuditLog) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"audit_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write(exportHeaders)
	for _, l := range logs {
		_ = writer.Write(exportRow(l))
	}
}

func (h *ExportHandler) writeXLSX(c *gin.Context, logs []models.AuditLog) {
	f := excelize.NewFile()
	sheetName := "Audit Log"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}
	f.SetActiveSheet(index)

	for i, head := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, head)
	}
	for idx, l := range logs {
		for col, val := range exportRow(l) {
			cell, _ := excelize.CoordinatesToCellName(col+1, idx+2)
			_ = f.SetCellValue(sheetName, cell, val)
		}
	}
	_ = f.SetColWidth(sheetName, "C", "C", 24)
	_ = f.SetColWidth(sheetName, "G", "G", 50)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"audit_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.WriteError(c, util.ErrInternal(err))
	}
}

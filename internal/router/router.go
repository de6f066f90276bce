package router

import (
	"net/http"
	"time"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/audit"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/config"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/deletion"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/extapi"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/handler"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires the services and configures the Gin engine.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	recorder := audit.NewRecorder(db)
	sessions := session.NewManager(db, recorder, time.Duration(cfg.Session.TTLHours)*time.Hour)
	deletions := deletion.NewService(db, recorder)
	external := extapi.NewService(db)

	authHandler := handler.NewAuthHandler(db, sessions)
	dispatcher := handler.NewDispatcher(db, sessions, recorder, deletions, cfg.Security.BcryptCost)
	externalHandler := handler.NewExternalHandler(external)
	exportHandler := handler.NewExportHandler(db, sessions)

	// ====== API ======
	// three trust boundaries, three endpoints
	r.POST("/api/auth", authHandler.Handle)
	r.POST("/api", dispatcher.Handle)
	r.POST("/api/external", externalHandler.Handle)

	// admin downloads (GET, so ?token= is accepted)
	r.GET("/api/export/audit", exportHandler.ExportAudit)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

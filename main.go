package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/config"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/database"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/router"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/util"

	"gorm.io/gorm"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// make sure at least one admin exists; account creation is an
	// admin-only action, so a fresh install needs a seed
	if err := ensureBootstrapAdmin(db, cfg); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	// setup router
	r := router.SetupRouter(cfg, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Printf("server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureBootstrapAdmin(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if cfg.Bootstrap.AdminEmail == "" || cfg.Bootstrap.AdminPassword == "" {
		return errors.New("no admin account exists and bootstrap credentials are not configured")
	}

	hash, err := util.HashPassword(cfg.Bootstrap.AdminPassword, cfg.Security.BcryptCost)
	if err != nil {
		return err
	}
	name := cfg.Bootstrap.AdminName
	if name == "" {
		name = "Administrator"
	}
	admin := models.User{
		Email:        cfg.Bootstrap.AdminEmail,
		PasswordHash: hash,
		DisplayName:  name,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("created bootstrap admin %s", admin.Email)
	return nil
}

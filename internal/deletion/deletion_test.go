package deletion

import (
	"context"
	"testing"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/audit"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/lifecycle"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	svc   *Service
	db    *gorm.DB
	owner *models.User
	other *models.User
	admin *models.User
	menu  *models.Menu
}

func setup(t *testing.T, status lifecycle.Status) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Menu{},
		&models.DeletionRequest{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	f := &fixture{svc: NewService(db, audit.NewRecorder(db)), db: db}
	f.owner = seedUser(t, db, "owner@example.com", models.RoleMenuDev)
	f.other = seedUser(t, db, "other@example.com", models.RoleMenuDev)
	f.admin = seedUser(t, db, "admin@example.com", models.RoleAdmin)

	menu := models.Menu{
		Name:          "Test Menu",
		OwnerID:       f.owner.ID,
		Status:        status,
		APIKeyDev:     "dev_k1",
		APIKeyBuild:   "build_k1",
		PaymentAPIKey: "pay_k1",
	}
	if err := db.Create(&menu).Error; err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	f.menu = &menu
	return f
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	u := models.User{
		Email:        email,
		PasswordHash: "$2a$04$notchecked",
		DisplayName:  email,
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return &u
}

func (f *fixture) menuStatus(t *testing.T) lifecycle.Status {
	t.Helper()
	var m models.Menu
	if err := f.db.First(&m, f.menu.ID).Error; err != nil {
		t.Fatalf("reload menu: %v", err)
	}
	return m.Status
}

func TestRequest(t *testing.T) {
	f := setup(t, lifecycle.StatusActive)
	ctx := context.Background()

	req, aerr := f.svc.Request(ctx, f.owner, f.menu.ID, "no longer maintained", "127.0.0.1")
	if aerr != nil {
		t.Fatalf("request: %v", aerr)
	}
	if req.Status != models.DeletionPending {
		t.Errorf("request status = %q, want pending", req.Status)
	}
	if got := f.menuStatus(t); got != lifecycle.StatusDeletionRequested {
		t.Errorf("menu status = %q, want deletion_requested", got)
	}

	var count int64
	f.db.Model(&models.AuditLog{}).Where("action = ?", "request_deletion").Count(&count)
	if count != 1 {
		t.Errorf("audit entries = %d, want 1", count)
	}
}

func TestRequestValidation(t *testing.T) {
	f := setup(t, lifecycle.StatusActive)
	ctx := context.Background()

	if _, aerr := f.svc.Request(ctx, f.owner, f.menu.ID, "   ", "127.0.0.1"); aerr == nil || aerr.Status != 400 {
		t.Errorf("blank reason: got %v, want 400", aerr)
	}

	// non-owner and missing menu fail identically
	if _, aerr := f.svc.Request(ctx, f.other, f.menu.ID, "reason", "127.0.0.1"); aerr == nil || aerr.Status != 403 {
		t.Errorf("foreign menu: got %v, want 403", aerr)
	}
	if _, aerr := f.svc.Request(ctx, f.owner, 9999, "reason", "127.0.0.1"); aerr == nil || aerr.Status != 403 {
		t.Errorf("missing menu: got %v, want 403", aerr)
	}
}

func TestRequestIneligibleStatus(t *testing.T) {
	for _, status := range []lifecycle.Status{
		lifecycle.StatusPendingApproval, lifecycle.StatusRejected,
		lifecycle.StatusTerminated, lifecycle.StatusDeletionRequested,
	} {
		f := setup(t, status)
		_, aerr := f.svc.Request(context.Background(), f.owner, f.menu.ID, "reason", "127.0.0.1")
		if aerr == nil || aerr.Status != 409 {
			t.Errorf("status %q: got %v, want 409", status, aerr)
		}
		if got := f.menuStatus(t); got != status {
			t.Errorf("status %q: menu moved to %q", status, got)
		}
	}
}

func TestRequestedTwiceConflicts(t *testing.T) {
	f := setup(t, lifecycle.StatusActive)
	ctx := context.Background()

	if _, aerr := f.svc.Request(ctx, f.owner, f.menu.ID, "first", "127.0.0.1"); aerr != nil {
		t.Fatalf("first request: %v", aerr)
	}
	if _, aerr := f.svc.Request(ctx, f.owner, f.menu.ID, "second", "127.0.0.1"); aerr == nil || aerr.Status != 409 {
		t.Errorf("second request: got %v, want 409", aerr)
	}

	var count int64
	f.db.Model(&models.DeletionRequest{}).Count(&count)
	if count != 1 {
		t.Errorf("request rows = %d, want 1", count)
	}
}

func TestResolveApproved(t *testing.T) {
	f := setup(t, lifecycle.StatusActive)
	ctx := context.Background()
	req, _ := f.svc.Request(ctx, f.owner, f.menu.ID, "done with it", "127.0.0.1")

	if aerr := f.svc.Resolve(ctx, f.admin, req.ID, models.DeletionApproved, "ok", "", "127.0.0.1"); aerr != nil {
		t.Fatalf("resolve: %v", aerr)
	}
	if got := f.menuStatus(t); got != lifecycle.StatusTerminated {
		t.Errorf("menu status = %q, want terminated", got)
	}

	var stored models.DeletionRequest
	f.db.First(&stored, req.ID)
	if stored.Status != models.DeletionApproved {
		t.Errorf("request status = %q, want approved", stored.Status)
	}
	if stored.AdminID == nil || *stored.AdminID != f.admin.ID {
		t.Error("admin id not recorded")
	}
}

func TestResolveRejected(t *testing.T) {
	f := setup(t, lifecycle.StatusActive)
	ctx := context.Background()
	req, _ := f.svc.Request(ctx, f.owner, f.menu.ID, "changed my mind", "127.0.0.1")

	if aerr := f.svc.Resolve(ctx, f.admin, req.ID, models.DeletionRejected, "keep it", "", "127.0.0.1"); aerr != nil {
		t.Fatalf("resolve: %v", aerr)
	}
	// rejection restores the menu to service
	if got := f.menuStatus(t); got != lifecycle.StatusActive {
		t.Errorf("menu status = %q, want active", got)
	}
}

func TestResolveTransferred(t *testing.T) {
	f := setup(t, lifecycle.StatusActive)
	ctx := context.Background()
	req, _ := f.svc.Request(ctx, f.owner, f.menu.ID, "handing over", "127.0.0.1")

	aerr := f.svc.Resolve(ctx, f.admin, req.ID, models.DeletionTransferred, "to other", "Other@Example.com", "127.0.0.1")
	if aerr != nil {
		t.Fatalf("resolve: %v", aerr)
	}

	var m models.Menu
	f.db.First(&m, f.menu.ID)
	if m.OwnerID != f.other.ID {
		t.Errorf("owner = %d, want %d", m.OwnerID, f.other.ID)
	}
	if m.Status != lifecycle.StatusActive {
		t.Errorf("menu status = %q, want active", m.Status)
	}
}

func TestResolveTransferUnknownTargetRollsBack(t *testing.T) {
	f := setup(t, lifecycle.StatusActive)
	ctx := context.Background()
	req, _ := f.svc.Request(ctx, f.owner, f.menu.ID, "handing over", "127.0.0.1")

	aerr := f.svc.Resolve(ctx, f.admin, req.ID, models.DeletionTransferred, "", "ghost@example.com", "127.0.0.1")
	if aerr == nil || aerr.Status != 404 {
		t.Fatalf("unknown target: got %v, want 404", aerr)
	}

	// nothing moved: menu still awaiting resolution, request still pending
	if got := f.menuStatus(t); got != lifecycle.StatusDeletionRequested {
		t.Errorf("menu status = %q, want deletion_requested", got)
	}
	var stored models.DeletionRequest
	f.db.First(&stored, req.ID)
	if stored.Status != models.DeletionPending {
		t.Errorf("request status = %q, want pending", stored.Status)
	}
}

func TestResolveSingleShot(t *testing.T) {
	f := setup(t, lifecycle.StatusActive)
	ctx := context.Background()
	req, _ := f.svc.Request(ctx, f.owner, f.menu.ID, "done", "127.0.0.1")

	if aerr := f.svc.Resolve(ctx, f.admin, req.ID, models.DeletionApproved, "", "", "127.0.0.1"); aerr != nil {
		t.Fatalf("first resolve: %v", aerr)
	}
	// a second resolution must not re-apply, even with another decision
	aerr := f.svc.Resolve(ctx, f.admin, req.ID, models.DeletionRejected, "", "", "127.0.0.1")
	if aerr == nil || aerr.Status != 409 {
		t.Errorf("second resolve: got %v, want 409", aerr)
	}
	if got := f.menuStatus(t); got != lifecycle.StatusTerminated {
		t.Errorf("menu status = %q, want terminated", got)
	}
}

func TestResolveValidation(t *testing.T) {
	f := setup(t, lifecycle.StatusActive)
	ctx := context.Background()
	req, _ := f.svc.Request(ctx, f.owner, f.menu.ID, "done", "127.0.0.1")

	if aerr := f.svc.Resolve(ctx, f.admin, req.ID, "deferred", "", "", "127.0.0.1"); aerr == nil || aerr.Status != 400 {
		t.Errorf("bad decision: got %v, want 400", aerr)
	}
	if aerr := f.svc.Resolve(ctx, f.admin, 9999, models.DeletionApproved, "", "", "127.0.0.1"); aerr == nil || aerr.Status != 404 {
		t.Errorf("missing request: got %v, want 404", aerr)
	}
	if aerr := f.svc.Resolve(ctx, f.admin, req.ID, models.DeletionTransferred, "", "", "127.0.0.1"); aerr == nil || aerr.Status != 400 {
		t.Errorf("transfer without target: got %v, want 400", aerr)
	}
}

package handler

import (
	"net/http"
	"testing"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"
)

// approvedMenu seeds a dev, an admin and one approved menu, returning
// both tokens and the menu id.
func approvedMenu(t *testing.T, e *testEnv) (devToken, adminToken string, menuID uint) {
	t.Helper()
	e.seedUser(t, "dev@example.com", "secret123", models.RoleMenuDev)
	e.seedUser(t, "admin@example.com", "secret123", models.RoleAdmin)
	devToken = e.login(t, "dev@example.com", "secret123")
	adminToken = e.login(t, "admin@example.com", "secret123")
	menuID = e.createMenu(t, devToken, "Fixture Menu")
	if status, env := e.action(t, adminToken, "admin_approve_menu",
		map[string]interface{}{"menu_id": menuID}); status != http.StatusOK {
		t.Fatalf("approve fixture: status %d, message %q", status, env.Message)
	}
	return devToken, adminToken, menuID
}

func TestCodeSlots(t *testing.T) {
	e := newTestEnv(t)
	devToken, _, menuID := approvedMenu(t, e)

	e.action(t, devToken, "update_code", map[string]interface{}{"menu_id": menuID, "code": "-- draft"})
	e.action(t, devToken, "push_to_build", map[string]interface{}{"menu_id": menuID, "code": "-- released"})

	// the two slots are independent
	var menu models.Menu
	e.db.First(&menu, menuID)
	if menu.DevCode != "-- draft" {
		t.Errorf("dev slot = %q", menu.DevCode)
	}
	if menu.BuildCode != "-- released" {
		t.Errorf("build slot = %q", menu.BuildCode)
	}

	// upload_menu picks the slot by target
	e.action(t, devToken, "upload_menu", map[string]interface{}{"menu_id": menuID, "code": "-- uploaded", "target": "build"})
	e.db.First(&menu, menuID)
	if menu.BuildCode != "-- uploaded" || menu.DevCode != "-- draft" {
		t.Errorf("after upload: dev=%q build=%q", menu.DevCode, menu.BuildCode)
	}
}

func TestGetAPIInfoOwnership(t *testing.T) {
	e := newTestEnv(t)
	devToken, _, menuID := approvedMenu(t, e)
	e.seedUser(t, "bob@example.com", "secret123", models.RoleMenuDev)
	bob := e.login(t, "bob@example.com", "secret123")

	status, env := e.action(t, devToken, "get_api_info", map[string]interface{}{"menu_id": menuID})
	if status != http.StatusOK {
		t.Fatalf("owner: status %d, message %q", status, env.Message)
	}
	api, _ := env.Data["api"].(map[string]interface{})
	for _, k := range []string{"api_key_dev", "api_key_build", "payment_api_key"} {
		if s, _ := api[k].(string); s == "" {
			t.Errorf("missing %s in api info", k)
		}
	}

	// keys are the crown jewels; strangers get nothing
	if status, _ := e.action(t, bob, "get_api_info", map[string]interface{}{"menu_id": menuID}); status != http.StatusForbidden {
		t.Errorf("stranger: status %d", status)
	}
}

func TestLintCodeAction(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "dev@example.com", "secret123", models.RoleMenuDev)
	devToken := e.login(t, "dev@example.com", "secret123")

	_, env := e.action(t, devToken, "lint_code", map[string]interface{}{"code": "function broken()"})
	issues, _ := env.Data["issues"].([]interface{})
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}

	// clean code answers with an empty list, not null
	_, env = e.action(t, devToken, "lint_code", map[string]interface{}{"code": "print(\"ok\")"})
	if issues, ok := env.Data["issues"].([]interface{}); !ok || len(issues) != 0 {
		t.Errorf("clean code issues = %v", env.Data["issues"])
	}
}

func TestMenuUserManagement(t *testing.T) {
	e := newTestEnv(t)
	devToken, _, menuID := approvedMenu(t, e)
	e.seedUser(t, "bob@example.com", "secret123", models.RoleMenuDev)
	bob := e.login(t, "bob@example.com", "secret123")

	mu := models.MenuUser{MenuID: menuID, Email: "player@example.com"}
	if err := e.db.Create(&mu).Error; err != nil {
		t.Fatalf("seed menu user: %v", err)
	}

	// blacklist via the internal surface, default reason
	status, env := e.action(t, devToken, "blacklist_user", map[string]interface{}{"menu_user_id": mu.ID})
	if status != http.StatusOK {
		t.Fatalf("blacklist: status %d, message %q", status, env.Message)
	}
	var stored models.MenuUser
	e.db.First(&stored, mu.ID)
	if !stored.IsBlacklisted || stored.BlacklistReason != "No reason provided" {
		t.Errorf("after blacklist: %+v", stored)
	}

	if status, _ := e.action(t, devToken, "unblacklist_user", map[string]interface{}{"menu_user_id": mu.ID}); status != http.StatusOK {
		t.Fatalf("unblacklist: status %d", status)
	}
	e.db.First(&stored, mu.ID)
	if stored.IsBlacklisted || stored.BlacklistReason != "" {
		t.Errorf("after unblacklist: %+v", stored)
	}

	// a stranger cannot touch users of a foreign menu
	if status, _ := e.action(t, bob, "blacklist_user", map[string]interface{}{"menu_user_id": mu.ID}); status != http.StatusForbidden {
		t.Errorf("stranger blacklist: status %d", status)
	}
	if status, _ := e.action(t, bob, "get_menu_users", map[string]interface{}{"menu_id": menuID}); status != http.StatusForbidden {
		t.Errorf("stranger listing: status %d", status)
	}
}

func TestGetMenuStats(t *testing.T) {
	e := newTestEnv(t)
	devToken, _, menuID := approvedMenu(t, e)

	e.db.Create(&models.MenuUser{MenuID: menuID, Email: "a@example.com"})
	e.db.Create(&models.MenuUser{MenuID: menuID, Email: "b@example.com", IsBlacklisted: true})
	e.db.Create(&models.DebugLog{MenuID: menuID, Details: "trace"})

	status, env := e.action(t, devToken, "get_menu_stats", map[string]interface{}{"menu_id": menuID})
	if status != http.StatusOK {
		t.Fatalf("stats: status %d, message %q", status, env.Message)
	}
	if env.Data["total_users"] != float64(2) {
		t.Errorf("total_users = %v", env.Data["total_users"])
	}
	if env.Data["blacklisted_users"] != float64(1) {
		t.Errorf("blacklisted_users = %v", env.Data["blacklisted_users"])
	}
	if env.Data["debug_logs"] != float64(1) {
		t.Errorf("debug_logs = %v", env.Data["debug_logs"])
	}
}

func TestAdminCodeAccess(t *testing.T) {
	e := newTestEnv(t)
	devToken, adminToken, menuID := approvedMenu(t, e)
	e.action(t, devToken, "update_code", map[string]interface{}{"menu_id": menuID, "code": "-- dev v1"})

	status, env := e.action(t, adminToken, "admin_view_code",
		map[string]interface{}{"menu_id": menuID})
	if status != http.StatusOK {
		t.Fatalf("view: status %d, message %q", status, env.Message)
	}
	if env.Data["code"] != "-- dev v1" {
		t.Errorf("code = %q", env.Data["code"])
	}

	if status, _ := e.action(t, adminToken, "admin_edit_code",
		map[string]interface{}{"menu_id": menuID, "code": "-- patched", "build_type": "build"}); status != http.StatusOK {
		t.Fatalf("edit: status %d", status)
	}
	var menu models.Menu
	e.db.First(&menu, menuID)
	if menu.BuildCode != "-- patched" || menu.DevCode != "-- dev v1" {
		t.Errorf("after admin edit: dev=%q build=%q", menu.DevCode, menu.BuildCode)
	}

	if status, _ := e.action(t, adminToken, "admin_view_code",
		map[string]interface{}{"menu_id": 9999}); status != http.StatusNotFound {
		t.Errorf("missing menu: status %d", status)
	}
}

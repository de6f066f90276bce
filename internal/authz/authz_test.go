package authz

import (
	"testing"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"
)

func TestCanManageMenu(t *testing.T) {
	owner := &models.User{ID: 1, Role: models.RoleMenuDev}
	other := &models.User{ID: 2, Role: models.RoleMenuDev}
	admin := &models.User{ID: 3, Role: models.RoleAdmin}
	menu := &models.Menu{ID: 10, OwnerID: 1}

	if !CanManageMenu(owner, menu) {
		t.Error("owner should manage own menu")
	}
	if CanManageMenu(other, menu) {
		t.Error("non-owner dev should not manage foreign menu")
	}
	if !CanManageMenu(admin, menu) {
		t.Error("admin should manage any menu")
	}
	if CanManageMenu(nil, menu) || CanManageMenu(owner, nil) {
		t.Error("nil actor or menu should never pass")
	}
}

func TestCanAccessTicket(t *testing.T) {
	creator := &models.User{ID: 1, Role: models.RoleMenuDev}
	other := &models.User{ID: 2, Role: models.RoleMenuDev}
	admin := &models.User{ID: 3, Role: models.RoleAdmin}
	ticket := &models.Ticket{ID: 5, CreatorID: 1}

	if !CanAccessTicket(creator, ticket) {
		t.Error("creator should access own ticket")
	}
	if CanAccessTicket(other, ticket) {
		t.Error("stranger should not access foreign ticket")
	}
	if !CanAccessTicket(admin, ticket) {
		t.Error("admin should access any ticket")
	}
}

func TestCanCreateMenu(t *testing.T) {
	if !CanCreateMenu(&models.User{ID: 1, Role: models.RoleMenuDev}) {
		t.Error("menu dev should create menus")
	}
	// admins operate on menus but never author them
	if CanCreateMenu(&models.User{ID: 2, Role: models.RoleAdmin}) {
		t.Error("admin should not create menus")
	}
	if CanCreateMenu(nil) {
		t.Error("nil actor should not create menus")
	}
}

func TestCanToggleUser(t *testing.T) {
	admin := &models.User{ID: 7, Role: models.RoleAdmin}
	if CanToggleUser(admin, 7) {
		t.Error("admin must not toggle own account")
	}
	if !CanToggleUser(admin, 8) {
		t.Error("admin should toggle other accounts")
	}
}

func TestOwnsMenu(t *testing.T) {
	owner := &models.User{ID: 1, Role: models.RoleMenuDev}
	admin := &models.User{ID: 3, Role: models.RoleAdmin}
	menu := &models.Menu{ID: 10, OwnerID: 1}

	if !OwnsMenu(owner, menu) {
		t.Error("owner should pass strict ownership")
	}
	// strict check deliberately excludes admins
	if OwnsMenu(admin, menu) {
		t.Error("admin should fail strict ownership")
	}
}

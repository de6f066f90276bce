// Package authz holds the pure authorization rules evaluated before
// every domain handler. The rules only look at the actor and the
// resource; they never touch the store.
package authz

import "github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"

// CanManageMenu reports whether actor may read or mutate the menu.
// Owners and admins qualify. Callers must answer a failed check with
// the same generic forbidden/not-found pair they use for a missing
// menu, so existence is never confirmed to outsiders.
func CanManageMenu(actor *models.User, menu *models.Menu) bool {
	if actor == nil || menu == nil {
		return false
	}
	return actor.IsAdmin() || menu.OwnerID == actor.ID
}

// CanAccessTicket reports whether actor may read or post to the ticket.
func CanAccessTicket(actor *models.User, ticket *models.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	return actor.IsAdmin() || ticket.CreatorID == actor.ID
}

// CanCreateMenu: menus are authored by menu developers; admins operate
// on menus but do not own them.
func CanCreateMenu(actor *models.User) bool {
	return actor != nil && actor.Role == models.RoleMenuDev
}

// CanToggleUser enforces admin self-protection: an admin may not
// deactivate their own account.
func CanToggleUser(actor *models.User, targetID uint) bool {
	return actor != nil && actor.ID != targetID
}

// OwnsMenu is the strict ownership check used where admins are
// deliberately excluded (deletion requests are owner-submitted).
func OwnsMenu(actor *models.User, menu *models.Menu) bool {
	if actor == nil || menu == nil {
		return false
	}
	return menu.OwnerID == actor.ID
}

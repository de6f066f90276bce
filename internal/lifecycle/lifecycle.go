package lifecycle

import "errors"

// Status is the operational state of a menu.
type Status string

const (
	StatusPendingApproval   Status = "pending_approval"
	StatusActive            Status = "active"
	StatusMaintenance       Status = "maintenance"
	StatusPaused            Status = "paused"
	StatusRejected          Status = "rejected"
	StatusTerminated        Status = "terminated"
	StatusDeletionRequested Status = "deletion_requested"
)

var (
	// ErrInvalidStatus means the requested target is not a known status.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrNotAllowed means the actor may not perform this transition.
	ErrNotAllowed = errors.New("transition not allowed")
)

var all = map[Status]bool{
	StatusPendingApproval:   true,
	StatusActive:            true,
	StatusMaintenance:       true,
	StatusPaused:            true,
	StatusRejected:          true,
	StatusTerminated:        true,
	StatusDeletionRequested: true,
}

// ownerSet is the only region of the state machine an owner can move
// a menu within. Everything else is admin territory: rejected and
// terminated are absorbing for owners, pending_approval needs an
// admin approval, deletion_requested needs an admin resolution.
var ownerSet = map[Status]bool{
	StatusActive:      true,
	StatusMaintenance: true,
	StatusPaused:      true,
}

// Valid reports whether s is a known status value.
func Valid(s Status) bool { return all[s] }

// OwnerToggleable reports whether s is inside the owner-reachable set.
func OwnerToggleable(s Status) bool { return ownerSet[s] }

// CanTransition decides whether moving a menu from cur to target is
// legal for the actor. Admins may set any valid status. Owners may
// only toggle between active, maintenance and paused, and only when
// the menu is already in one of those three states.
func CanTransition(cur, target Status, admin bool) error {
	if !Valid(target) {
		return ErrInvalidStatus
	}
	if admin {
		return nil
	}
	if !OwnerToggleable(target) || !OwnerToggleable(cur) {
		return ErrNotAllowed
	}
	return nil
}

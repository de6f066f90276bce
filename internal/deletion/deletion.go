package deletion

import (
	"context"
	"errors"
	"strings"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/audit"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/lifecycle"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/util"

	"gorm.io/gorm"
)

// Service implements the deletion workflow: an owner submits a
// request, an admin resolves it into one of three terminal outcomes.
type Service struct {
	DB       *gorm.DB
	Recorder *audit.Recorder
}

func NewService(db *gorm.DB, rec *audit.Recorder) *Service {
	return &Service{DB: db, Recorder: rec}
}

// Request submits a deletion request for a menu the actor owns. The
// menu is flipped to deletion_requested with a conditional update, so
// a second concurrent request (or one against an already-requested
// menu) loses the race and fails. Only menus in the owner-toggleable
// set can enter the workflow.
func (s *Service) Request(ctx context.Context, actor *models.User, menuID uint, reason, ip string) (*models.DeletionRequest, *util.APIError) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, util.ErrValidation("reason required")
	}

	db := s.DB.WithContext(ctx)

	var menu models.Menu
	err := db.First(&menu, menuID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrForbidden()
	}
	if err != nil {
		return nil, util.ErrInternal(err)
	}
	if menu.OwnerID != actor.ID {
		return nil, util.ErrForbidden()
	}

	var req models.DeletionRequest
	txErr := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Menu{}).
			Where("id = ? AND status IN ?", menuID, []lifecycle.Status{
				lifecycle.StatusActive, lifecycle.StatusMaintenance, lifecycle.StatusPaused,
			}).
			Update("status", lifecycle.StatusDeletionRequested)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrConflict("deletion already requested or menu not eligible")
		}

		req = models.DeletionRequest{
			MenuID:      menuID,
			RequesterID: actor.ID,
			Reason:      reason,
			Status:      models.DeletionPending,
		}
		return tx.Create(&req).Error
	})
	if txErr != nil {
		var apiErr *util.APIError
		if errors.As(txErr, &apiErr) {
			return nil, apiErr
		}
		return nil, util.ErrInternal(txErr)
	}

	s.Recorder.Record(ctx, &actor.ID, "request_deletion",
		audit.Details{"menu_id": menuID, "reason": reason}, ip, "menu", &menuID)
	return &req, nil
}

// Resolve settles a pending request. Resolutions are single-shot: the
// request row is advanced out of pending with a conditional update,
// so a second resolution attempt fails with a conflict instead of
// re-applying. The transfer outcome is atomic; an unknown target
// email rolls the whole operation back.
func (s *Service) Resolve(ctx context.Context, admin *models.User, requestID uint, decision, response, transferEmail, ip string) *util.APIError {
	switch decision {
	case models.DeletionApproved, models.DeletionRejected, models.DeletionTransferred:
	default:
		return util.ErrValidation("decision must be approved, rejected or transferred")
	}

	db := s.DB.WithContext(ctx)

	var req models.DeletionRequest
	err := db.First(&req, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotFound("request not found")
	}
	if err != nil {
		return util.ErrInternal(err)
	}
	if req.Status != models.DeletionPending {
		return util.ErrConflict("request already resolved")
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":         decision,
			"admin_response": response,
			"admin_id":       admin.ID,
		}

		switch decision {
		case models.DeletionTransferred:
			transferEmail = strings.TrimSpace(transferEmail)
			if transferEmail == "" {
				return util.ErrValidation("transfer_to_email required")
			}
			var target models.User
			err := tx.Where("LOWER(email) = LOWER(?)", transferEmail).First(&target).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrNotFound("transfer target user not found")
			}
			if err != nil {
				return err
			}
			updates["transfer_to_email"] = transferEmail
			if err := tx.Model(&models.Menu{}).Where("id = ?", req.MenuID).
				Updates(map[string]interface{}{"owner_id": target.ID, "status": lifecycle.StatusActive}).Error; err != nil {
				return err
			}

		case models.DeletionApproved:
			// administrative deletion: code and keys stay in storage
			if err := tx.Model(&models.Menu{}).Where("id = ?", req.MenuID).
				Update("status", lifecycle.StatusTerminated).Error; err != nil {
				return err
			}

		case models.DeletionRejected:
			if err := tx.Model(&models.Menu{}).Where("id = ?", req.MenuID).
				Update("status", lifecycle.StatusActive).Error; err != nil {
				return err
			}
		}

		res := tx.Model(&models.DeletionRequest{}).
			Where("id = ? AND status = ?", requestID, models.DeletionPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrConflict("request already resolved")
		}
		return nil
	})
	if txErr != nil {
		var apiErr *util.APIError
		if errors.As(txErr, &apiErr) {
			return apiErr
		}
		return util.ErrInternal(txErr)
	}

	s.Recorder.Record(ctx, &admin.ID, "admin_handle_deletion",
		audit.Details{"request_id": requestID, "decision": decision}, ip, "menu", &req.MenuID)
	return nil
}

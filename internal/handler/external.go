package handler

import (
	"strings"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/extapi"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/util"

	"github.com/gin-gonic/gin"
)

// ExternalHandler serves third-party loader and payment integrations.
// It never touches sessions: the bearer value is matched directly
// against per-menu static keys inside the service.
type ExternalHandler struct {
	Svc *extapi.Service
}

func NewExternalHandler(svc *extapi.Service) *ExternalHandler {
	return &ExternalHandler{Svc: svc}
}

type externalRequest struct {
	Action    string `json:"action"`
	BuildType string `json:"build_type"`
	Email     string `json:"email"`
	HWID      string `json:"hwid"`
	Reason    string `json:"reason"`
	Details   string `json:"details"`
}

func (h *ExternalHandler) Handle(c *gin.Context) {
	key := bearerValue(c)
	if key == "" {
		util.WriteError(c, util.ErrAuthMsg("authorization required"))
		return
	}

	var req externalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.WriteError(c, util.ErrValidation("malformed request body"))
		return
	}
	ctx := c.Request.Context()

	switch req.Action {
	case "get_code":
		code, aerr := h.Svc.GetCode(ctx, key, req.BuildType)
		if aerr != nil {
			util.WriteError(c, aerr)
			return
		}
		util.Success(c, util.Response{"code": code})

	case "create_user":
		mu, aerr := h.Svc.CreateUser(ctx, key, req.Email, req.HWID)
		if aerr != nil {
			util.WriteError(c, aerr)
			return
		}
		util.Success(c, util.Response{"success": true, "user": mu})

	case "blacklist_user":
		if aerr := h.Svc.Blacklist(ctx, key, req.Email, req.Reason); aerr != nil {
			util.WriteError(c, aerr)
			return
		}
		util.Success(c, util.Response{"success": true})

	case "check_blacklist":
		blacklisted, reason, aerr := h.Svc.CheckBlacklist(ctx, key, req.Email)
		if aerr != nil {
			util.WriteError(c, aerr)
			return
		}
		util.Success(c, util.Response{"blacklisted": blacklisted, "reason": reason})

	case "check_user":
		mu, aerr := h.Svc.CheckUser(ctx, key, req.Email)
		if aerr != nil {
			util.WriteError(c, aerr)
			return
		}
		util.Success(c, util.Response{"user": gin.H{
			"email":          mu.Email,
			"hwid":           mu.HWID,
			"is_blacklisted": mu.IsBlacklisted,
			"created_at":     mu.CreatedAt,
		}})

	case "debug_log":
		if aerr := h.Svc.AppendDebugLog(ctx, key, req.Details, req.Email, c.ClientIP()); aerr != nil {
			util.WriteError(c, aerr)
			return
		}
		util.Success(c, util.Response{"success": true})

	default:
		util.WriteError(c, util.ErrValidation("unknown action"))
	}
}

// bearerValue extracts the Authorization bearer token.
func bearerValue(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

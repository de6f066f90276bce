package handler

import (
	"errors"
	"strings"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/session"
	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler serves the authentication endpoint, a trust boundary of
// its own: login exchanges credentials for a session token, validate
// and logout operate on the token alone.
type AuthHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

func NewAuthHandler(db *gorm.DB, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{DB: db, Sessions: sessions}
}

type authRequest struct {
	Action      string `json:"action"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Fingerprint string `json:"fingerprint"`
	Token       string `json:"token"`
}

func (h *AuthHandler) Handle(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.WriteError(c, util.ErrValidation("malformed request body"))
		return
	}

	switch req.Action {
	case "login":
		h.login(c, &req)
	case "validate":
		h.validate(c, &req)
	case "logout":
		h.logout(c, &req)
	default:
		util.WriteError(c, util.ErrValidation("unknown action"))
	}
}

func (h *AuthHandler) login(c *gin.Context, req *authRequest) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		util.WriteError(c, util.ErrValidation("email and password required"))
		return
	}

	var user models.User
	err := h.DB.WithContext(c.Request.Context()).
		Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// same answer as a wrong password; no account enumeration
		util.WriteError(c, util.ErrAuthMsg("invalid credentials"))
		return
	}
	if err != nil {
		util.WriteError(c, util.ErrInternal(err))
		return
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		util.WriteError(c, util.ErrAuthMsg("invalid credentials"))
		return
	}
	if !user.IsActive {
		util.WriteError(c, util.ErrForbiddenMsg("account is disabled"))
		return
	}

	token, aerr := h.Sessions.Issue(c.Request.Context(), &user, c.ClientIP(), req.Fingerprint)
	if aerr != nil {
		util.WriteError(c, aerr)
		return
	}

	util.Success(c, util.Response{
		"token": token,
		"user":  userProjection(&user),
	})
}

func (h *AuthHandler) validate(c *gin.Context, req *authRequest) {
	if req.Token == "" {
		util.WriteError(c, util.ErrValidation("token required"))
		return
	}
	user, aerr := h.Sessions.Validate(c.Request.Context(), req.Token)
	if aerr != nil {
		util.WriteError(c, aerr)
		return
	}
	util.Success(c, util.Response{"user": userProjection(user)})
}

// logout always succeeds, even for an unknown or already-revoked token.
func (h *AuthHandler) logout(c *gin.Context, req *authRequest) {
	h.Sessions.Revoke(c.Request.Context(), req.Token, c.ClientIP())
	util.Success(c, util.Response{"success": true})
}

func userProjection(u *models.User) gin.H {
	return gin.H{
		"id":           u.ID,
		"email":        u.Email,
		"display_name": u.DisplayName,
		"role":         u.Role,
	}
}

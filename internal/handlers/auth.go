package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/tasktrack/internal/constants"
	"github.com/yukikurage/tasktrack/internal/dto"
	apierrors "github.com/yukikurage/tasktrack/internal/errors"
	"github.com/yukikurage/tasktrack/internal/middleware"
	"github.com/yukikurage/tasktrack/internal/services"
	"github.com/yukikurage/tasktrack/internal/utils"
)

// AuthHandler coordinates account-related HTTP handlers.
type AuthHandler struct {
	accountService *services.AccountService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accountService *services.AccountService) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
	}
}

// Register creates an account from the registration form.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.accountService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Login authenticates a user by email and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.accountService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.Redirect(http.StatusFound, constants.RouteHome)
}

// Profile returns the current user's profile; ?editable= toggles the edit mode.
func (h *AuthHandler) Profile(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)

	c.JSON(http.StatusOK, dto.ProfileDTO{
		User:       dto.ToUserDTO(*user),
		IsEditable: utils.ParseBoolean(c.Query("editable")),
	})
}

// UpdateProfile saves the profile form.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)

	var req services.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.accountService.UpdateProfile(c.Request.Context(), user, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileDTO{User: dto.ToUserDTO(*updated)})
}

// ChangePassword replaces the password of the logged-in user. The session stays valid.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)

	var req services.ChangePasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.accountService.ChangePassword(c.Request.Context(), user, req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Your password was changed.",
	})
}

// ForgotPassword mails a reset link. The response never reveals whether the email is known.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	type ForgotPasswordRequest struct {
		Email string `json:"email"`
	}

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.accountService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "We've emailed you instructions for setting your password, if an account exists with the email you entered.",
	})
}

// ResetPasswordConfirm sets a new password from an emailed link.
func (h *AuthHandler) ResetPasswordConfirm(c *gin.Context) {
	var req services.SetPasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.accountService.ResetPassword(c.Request.Context(), c.Param("uidb64"), c.Param("token"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Your password has been set. You may go ahead and log in now.",
	})
}

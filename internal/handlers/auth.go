package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnhub/api/internal/middleware"
	"learnhub/api/internal/repository"
	"learnhub/api/internal/service"
)

type registerRequest struct {
	Name     string `form:"name" json:"name" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=8"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// RegisterUser accepts a JSON body or a multipart form; the multipart
// variant may carry an avatar image.
func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Device:   deviceInfo(c),
	}

	if header, err := c.FormFile("avatar"); err == nil {
		url, key, err := h.uploadImage(c, header, "avatars")
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "avatar_upload_failed"})
			return
		}
		input.AvatarURL = &url
		input.AvatarKey = &key
	}

	result, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
			return
		}
		h.log.Error().Err(err).Msg("register failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration_failed"})
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		Token: result.Token,
		User:  newUserResponse(result.User),
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Device:   deviceInfo(c),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login_failed"})
		return
	}

	// Not a failure: the account is simply signed in elsewhere. The client
	// shows a prompt and may call logout-all-devices before retrying.
	if result.AlreadyActive {
		c.JSON(http.StatusOK, gin.H{
			"hasActiveSession": true,
			"userId":           result.ActiveUserID,
			"message":          "account is active on another device",
		})
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Token: result.Token,
		User:  newUserResponse(result.User),
	})
}

func (h HandlerSet) Logout(c *gin.Context) {
	token := c.GetString(middleware.CtxToken)

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.log.Error().Err(err).Msg("logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

type logoutAllRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// LogoutAllDevices revokes every live session for the given user. Regular
// users may only evict themselves; admins may evict anyone.
func (h HandlerSet) LogoutAllDevices(c *gin.Context) {
	var req logoutAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	if user.ID != req.UserID && !isAdmin(user) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	revoked, err := h.authService.LogoutAllDevices(c.Request.Context(), req.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("logout all devices failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"revokedSessions": revoked})
}

func (h HandlerSet) Me(c *gin.Context) {
	c.JSON(http.StatusOK, newUserResponse(currentUser(c)))
}

// ActiveDevice reports the device currently holding the user's single
// active session, if any.
func (h HandlerSet) ActiveDevice(c *gin.Context) {
	userID := c.Param("userId")

	session, err := h.authService.ActiveSession(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no_active_session"})
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("active session lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active":  true,
		"session": newSessionResponse(session),
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a reset token. The response is identical whether
// or not the address exists, so the endpoint cannot be used to probe for
// accounts. Token delivery is the operator's concern; the token lands in
// the log for the delivery hook, never in the public response.
func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		h.log.Error().Err(err).Msg("password reset request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset_request_failed"})
		return
	}
	if token != "" {
		h.log.Info().Str("email", req.Email).Str("resetToken", token).Msg("password reset token issued")
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a reset token has been issued"})
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrResetTokenInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_reset_token"})
			return
		}
		h.log.Error().Err(err).Msg("password reset failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated, all sessions revoked"})
}

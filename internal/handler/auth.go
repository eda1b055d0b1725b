package handler

import (
	"errors"
	"net/http"

	"daily-checkin/internal/logger"
	"daily-checkin/internal/middleware"
	"daily-checkin/internal/model"
	"daily-checkin/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth   *service.AuthService
	tokens *middleware.Tokens
}

func NewAuthHandler(auth *service.AuthService, tokens *middleware.Tokens) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warn("login.failed", "email", req.Email, logger.Err(err))
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login unavailable"})
		return
	}

	logger.Info("login.ok", "uid", u.UID)
	h.respondWithToken(c, http.StatusOK, u)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	u, err := h.auth.Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	if errors.Is(err, service.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		logger.Error("signup.failed", logger.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup unavailable"})
		return
	}

	logger.Info("signup.ok", "uid", u.UID)
	h.respondWithToken(c, http.StatusCreated, u)
}

func (h *AuthHandler) Me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, u *model.User) {
	cu := model.CurrentUser{UID: u.UID, Email: u.Email, Name: u.Name, Role: u.Role, EmailVerified: u.EmailVerified}
	token, err := h.tokens.Issue(cu)
	if err != nil {
		logger.Error("token.issue.failed", "uid", u.UID, logger.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token unavailable"})
		return
	}
	c.JSON(status, model.LoginResponse{Token: token, User: cu})
}

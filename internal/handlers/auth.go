package handlers

import (
	"context"
	"net/http"
	"time"

	"realestate-hub/internal/auth"
	"realestate-hub/internal/config"
	"realestate-hub/internal/forms"
	"realestate-hub/internal/middleware"
	"realestate-hub/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler signs users up, in and out
type AuthHandler struct {
	auth   *auth.Service
	cfg    config.AuthConfig
	logger *zap.Logger
}

func NewAuthHandler(svc *auth.Service, cfg config.AuthConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, cfg: cfg, logger: logger}
}

// Register creates a client or agent account
func (h *AuthHandler) Register(c *gin.Context) {
	var user *models.User
	ok := submitForm(c, h.logger, msgRegister, func(ctx context.Context, f forms.RegistrationForm) error {
		u, err := h.auth.SignUp(ctx, f.Email, f.Password, auth.Profile{
			FullName: f.FullName,
			Phone:    f.Phone,
			Role:     models.UserRole(f.Role),
		})
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if !ok {
		return
	}

	h.logger.Info("[Auth] user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login checks the credentials, sets the session cookie and returns the token
func (h *AuthHandler) Login(c *gin.Context) {
	var session *auth.Session
	ok := submitForm(c, h.logger, msgLogin, func(ctx context.Context, f forms.LoginForm) error {
		s, err := h.auth.SignInWithPassword(ctx, f.Email, f.Password)
		if err != nil {
			return err
		}
		session = s
		return nil
	})
	if !ok {
		return
	}

	h.setCookie(c, session.Token, int(time.Until(session.ExpiresAt).Seconds()))
	c.JSON(http.StatusOK, session)
}

// Logout revokes the current session and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.SessionToken(c, h.cfg.CookieName); token != "" {
		if err := h.auth.SignOut(c.Request.Context(), token); err != nil {
			h.logger.Error("[Auth] failed to sign out", zap.Error(err))
		}
	}
	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Sesión cerrada"})
}

// Session returns the current identity, or null when signed out
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentIdentity(c)})
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, value, maxAge, "/", "", h.cfg.CookieSecure, true)
}

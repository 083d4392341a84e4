package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"paperarchive/internal/app"
	"paperarchive/internal/transport/http/middleware"
	"paperarchive/internal/transport/http/response"
)

// CookieSettings scope the session cookie.
type CookieSettings struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	authService *app.AuthService
	cookie      CookieSettings
}

// LoginRequest accepts email/password as aliases for identity/secret.
type LoginRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authUser struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
}

func NewAuthHandler(authService *app.AuthService, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Identity == "" {
		req.Identity = req.Email
	}
	if req.Secret == "" {
		req.Secret = req.Password
	}

	result, err := h.authService.Login(app.LoginInput{
		Identity: req.Identity,
		Secret:   req.Secret,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrValidation):
			response.Error(c, http.StatusBadRequest, "identity and secret are required")
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, "invalid credentials")
		default:
			logrus.WithError(err).Error("login failed")
			response.Error(c, http.StatusInternalServerError, "login failed")
		}
		return
	}

	h.setCookie(c, result.Token, int(h.authService.TokenTTL()/time.Second))
	response.OK(c, gin.H{
		"success":   true,
		"identity":  result.Identity,
		"role":      result.Role,
		"expiresAt": result.ExpiresAt,
	})
}

func (h *AuthHandler) Status(c *gin.Context) {
	token := middleware.TokenFromRequest(c, h.cookie.Name)
	claims, err := h.authService.Authenticate(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, app.ErrInvalidToken) {
			response.Error(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		logrus.WithError(err).Error("auth status check failed")
		response.Error(c, http.StatusInternalServerError, "authentication unavailable")
		return
	}

	response.OK(c, gin.H{
		"authenticated": true,
		"user": authUser{
			Identity: claims.Identity,
			Role:     claims.Role,
		},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.TokenFromRequest(c, h.cookie.Name); token != "" {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			logrus.WithError(err).Warn("token revocation failed")
		}
	}
	h.setCookie(c, "", -1)
	response.Success(c)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}

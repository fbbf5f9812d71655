package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/egarage-auth/config"
	"github.com/oksasatya/egarage-auth/internal/application"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
	"github.com/oksasatya/egarage-auth/pkg/response"
)

// AuthHandler serves the public signup, signin and password reset endpoints.
type AuthHandler struct {
	Svc     *application.Service
	Cfg     *config.Config
	Logger  logrus.FieldLogger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.Service, cfg *config.Config, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Svc: svc, Cfg: cfg, Logger: logger, Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)}
}

type signupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Phone     string `json:"phone" binding:"omitempty,phone"`
}

type signinRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type tokenRequest struct {
	Token string `json:"token" binding:"required,resettoken"`
}

type resetPasswordRequest struct {
	Token           string `json:"token" binding:"required,resettoken"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// Signup POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	res, err := h.Svc.Signup(reqCtx(c), application.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.SetAccess(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusCreated, toAuthView(res), "account created")
}

type signinFunc func(ctx context.Context, email, password string) (*application.AuthResult, error)

func (h *AuthHandler) signin(fn signinFunc, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidPayload(c, err)
			return
		}
		res, err := fn(reqCtx(c), req.Email, req.Password)
		if err != nil {
			fail(c, h.Logger, err)
			return
		}
		h.Cookies.SetAccess(c, res.Token, res.ExpiresAt)
		response.Success(c, http.StatusOK, toAuthView(res), message)
	}
}

// Signin POST /api/auth/signin
func (h *AuthHandler) Signin(c *gin.Context) {
	h.signin(h.Svc.Signin, "signin successful")(c)
}

// AdminSignin POST /api/auth/admin/signin
func (h *AuthHandler) AdminSignin(c *gin.Context) {
	h.signin(h.Svc.AdminSignin, "admin signin successful")(c)
}

// ProviderSignin POST /api/auth/provider/signin
func (h *AuthHandler) ProviderSignin(c *gin.Context) {
	h.signin(h.Svc.ProviderSignin, "provider signin successful")(c)
}

// RequestPasswordReset POST /api/auth/request-password-reset
// The answer is the same whether or not the email is registered.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	res, err := h.Svc.RequestPasswordReset(reqCtx(c), req.Email)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	data := gin.H{}
	if h.Cfg.ExposeResetToken && res.Token != "" {
		data["token"] = res.Token
		data["expires_at"] = res.ExpiresAt
	}
	response.Success(c, http.StatusOK, data, res.Message)
}

// VerifyResetToken POST /api/auth/verify-reset-token
func (h *AuthHandler) VerifyResetToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	st, err := h.Svc.VerifyResetToken(reqCtx(c), req.Token)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"valid": st.Valid, "user_id": st.UserID, "email": st.Email}, "token is valid")
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	res, err := h.Svc.ResetPassword(reqCtx(c), req.Token, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": res.Success, "email": res.Email}, "password has been reset")
}

// VerifyEmail POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	if err := h.Svc.VerifyEmail(reqCtx(c), req.Token); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true}, "email verified")
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}

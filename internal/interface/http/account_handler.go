package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/egarage-auth/internal/application"
	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/interface/middleware"
	"github.com/oksasatya/egarage-auth/pkg/response"
)

// AccountHandler serves endpoints for the authenticated caller.
type AccountHandler struct {
	Svc    *application.Service
	Logger logrus.FieldLogger
}

func NewAccountHandler(svc *application.Service, logger logrus.FieldLogger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type verifyCodeRequest struct {
	Code string `json:"code" binding:"required,otp"`
}

// Me GET /api/auth/me
func (h *AccountHandler) Me(c *gin.Context) {
	u, err := h.Svc.Me(reqCtx(c), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "current user")
}

// ChangePassword POST /api/auth/password/change
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	err := h.Svc.ChangePassword(reqCtx(c), c.GetString(middleware.CtxUserIDKey), req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"changed": true}, "password changed")
}

// VerifyInit POST /api/auth/verify/init
func (h *AccountHandler) VerifyInit(c *gin.Context) {
	res, err := h.Svc.RequestEmailVerification(reqCtx(c), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	if res.AlreadyVerified {
		response.Success(c, http.StatusOK, gin.H{"already_verified": true}, "already verified")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"already_verified": false, "expires_at": res.ExpiresAt}, "verification email sent")
}

// VerifyCode POST /api/auth/verify/code
func (h *AccountHandler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	if err := h.Svc.ConfirmVerificationCode(reqCtx(c), c.GetString(middleware.CtxUserIDKey), req.Code); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true}, "email verified")
}

type activityView struct {
	Action     string         `json:"action"`
	IP         string         `json:"ip,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Activity GET /api/auth/activity?size=N
func (h *AccountHandler) Activity(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	acts, err := h.Svc.RecentActivity(reqCtx(c), c.GetString(middleware.CtxUserIDKey), size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	out := make([]activityView, 0, len(acts))
	for _, a := range acts {
		out = append(out, toActivityView(a))
	}
	response.Success(c, http.StatusOK, out, "recent activity")
}

func toActivityView(a entity.Activity) activityView {
	return activityView{
		Action:     a.Action,
		IP:         a.IP,
		UserAgent:  a.UserAgent,
		Metadata:   a.Metadata,
		OccurredAt: a.OccurredAt.UTC(),
	}
}

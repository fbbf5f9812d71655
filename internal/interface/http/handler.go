package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/egarage-auth/internal/application"
	"github.com/oksasatya/egarage-auth/internal/domain/apperror"
	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/interface/middleware"
	"github.com/oksasatya/egarage-auth/pkg/response"
	"github.com/oksasatya/egarage-auth/pkg/validation"
)

// reqCtx carries the caller's IP, user agent and request id into the service.
func reqCtx(c *gin.Context) context.Context {
	return application.WithMeta(c.Request.Context(), application.RequestMeta{
		IP:        middleware.ClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString("request_id"),
	})
}

func invalidPayload(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, "invalid payload", response.ErrorBody{
		Code:    "validation_error",
		Details: validation.ToDetails(err),
	})
}

// fail renders err. Domain errors keep their message and code; anything else
// is logged and reported as a generic internal error.
func fail(c *gin.Context, logger logrus.FieldLogger, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("unhandled error")
		appErr = apperror.Internal(err)
	}
	response.Error(c, apperror.StatusOf(appErr), appErr.Message, response.ErrorBody{Code: apperror.CodeOf(appErr)})
}

type roleView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// userView is the public shape of a user. It never carries the password hash
// or verification code.
type userView struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Role       *roleView `json:"role,omitempty"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toUserView(u *entity.User) userView {
	v := userView{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Name:       u.DisplayName(),
		Phone:      u.Phone,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	if u.Role != nil {
		v.Role = &roleView{ID: u.Role.ID, Name: u.Role.Name}
	}
	return v
}

type providerView struct {
	ID           string `json:"id"`
	BusinessName string `json:"business_name"`
	Description  string `json:"description,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	IsVerified   bool   `json:"is_verified"`
	IsActive     bool   `json:"is_active"`
}

type authView struct {
	User      userView      `json:"user"`
	Provider  *providerView `json:"provider,omitempty"`
	Token     string        `json:"token"`
	TokenType string        `json:"token_type"`
	ExpiresAt time.Time     `json:"expires_at"`
}

func toAuthView(res *application.AuthResult) authView {
	v := authView{
		User:      toUserView(res.User),
		Token:     res.Token,
		TokenType: res.TokenType,
		ExpiresAt: res.ExpiresAt,
	}
	if p := res.Provider; p != nil {
		v.Provider = &providerView{
			ID:           p.ID,
			BusinessName: p.BusinessName,
			Description:  p.Description,
			ContactPhone: p.ContactPhone,
			IsVerified:   p.IsVerified,
			IsActive:     p.IsActive,
		}
	}
	return v
}

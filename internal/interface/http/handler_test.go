package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/egarage-auth/internal/domain/apperror"
	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

func TestFail(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperror.ErrDuplicateEmail, http.StatusConflict, "duplicate_email"},
		{apperror.ErrTokenExpired, http.StatusBadRequest, "token_expired"},
		{apperror.ErrNotAdmin, http.StatusForbidden, "not_admin"},
		{apperror.ErrProfileNotFound, http.StatusNotFound, "profile_not_found"},
		{errors.New("pq: password authentication failed for user postgres"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		fail(c, helpers.NewNopLogger(), tc.err)

		assert.Equal(t, tc.status, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"`+tc.code+`"`)
		assert.NotContains(t, w.Body.String(), "postgres")
	}
}

func TestToUserViewHidesSecrets(t *testing.T) {
	v := toUserView(&entity.User{
		ID: "u-1", Email: "ann@example.com", FirstName: "Ann", LastName: "Lee",
		PasswordHash: "$2a$10$hash", VerificationCode: "123456",
		Role: &entity.Role{ID: "r-1", Name: entity.RoleUser},
	})
	assert.Equal(t, "Ann Lee", v.Name)
	assert.Equal(t, entity.RoleUser, v.Role.Name)
}

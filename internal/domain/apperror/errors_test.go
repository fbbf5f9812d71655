package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByTextCode(t *testing.T) {
	custom := WithMessage(ErrWeakPassword, "too short")
	wrapped := fmt.Errorf("signup: %w", custom)

	assert.True(t, Is(wrapped, ErrWeakPassword))
	assert.False(t, Is(wrapped, ErrPasswordMismatch))
	assert.False(t, Is(errors.New("weak_password"), ErrWeakPassword))
	assert.Equal(t, "too short", custom.Message)
	assert.Equal(t, "Password must be at least 8 characters long", ErrWeakPassword.Message)
}

func TestNew_CarriesCategoryAndStatus(t *testing.T) {
	assert.Equal(t, goerrors.CategoryConflict, ErrDuplicateEmail.Category)
	assert.Equal(t, http.StatusConflict, ErrDuplicateEmail.Code)
	assert.Equal(t, "duplicate_email", ErrDuplicateEmail.TextCode)
	assert.Equal(t, goerrors.CategoryAuthz, ErrNotAdmin.Category)
	assert.Equal(t, http.StatusForbidden, StatusOf(fmt.Errorf("x: %w", ErrNotAdmin)))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:5432: connection refused")
	err := Internal(cause)

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, TextCodeInternal, err.TextCode)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.NotContains(t, err.Message, "10.0.0.1")
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsDomain(err))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("x: %w", ErrDuplicateEmail)))
	assert.Equal(t, KindExpired, KindOf(ErrTokenExpired))
	assert.Equal(t, KindValidation, KindOf(ErrPasswordTooLong))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.True(t, IsDomain(ErrTokenExpired))
	assert.False(t, IsDomain(errors.New("boom")))
}

func TestCodeOf(t *testing.T) {
	e, ok := As(fmt.Errorf("x: %w", ErrUserNotFound))
	require.True(t, ok)
	assert.Equal(t, "user_not_found", e.TextCode)
	assert.Equal(t, TextCodeInternal, CodeOf(errors.New("boom")))
	_, ok = As(nil)
	assert.False(t, ok)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindExpired:        http.StatusBadRequest,
		KindNotFound:       http.StatusNotFound,
		KindConflict:       http.StatusConflict,
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindInternal:       http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, HTTPStatus(k), string(k))
	}
}

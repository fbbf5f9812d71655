package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestJWTManager_IssueDecode(t *testing.T) {
	now := time.Now()
	m := NewJWTManager("secret", 30*time.Minute).WithClock(fixedClock(now))

	tok, exp, err := m.IssueForUser("u-1", "a@b.test", "admin")
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute).Unix(), exp.Unix())

	claims, err := m.DecodeAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "a@b.test", claims.Email)
	assert.Equal(t, "admin", claims.Role)

	raw, err := m.Decode(tok)
	require.NoError(t, err)
	assert.EqualValues(t, now.Unix(), raw["iat"])
	assert.EqualValues(t, exp.Unix(), raw["exp"])
}

func TestJWTManager_Expired(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	m := NewJWTManager("secret", time.Minute).WithClock(fixedClock(issued))
	tok, _, err := m.Issue(map[string]any{"uid": "u-1"}, time.Minute)
	require.NoError(t, err)

	m.WithClock(time.Now)
	_, err = m.Decode(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTManager_Invalid(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	other := NewJWTManager("other", time.Minute)
	tok, _, err := other.IssueForUser("u-1", "a@b.test", "")
	require.NoError(t, err)

	_, err = m.Decode(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.Decode("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": "u-1", "exp": time.Now().Add(time.Hour).Unix()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Decode(none)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTManager_DecodeAccessRequiresUID(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	tok, _, err := m.Issue(map[string]any{"sub": "a@b.test"}, time.Minute)
	require.NoError(t, err)

	_, err = m.DecodeAccess(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

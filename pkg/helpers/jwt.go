package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// JWTManager signs and decodes HS256 bearer tokens
type JWTManager struct {
	Secret    []byte
	AccessTTL time.Duration
	now       func() time.Time
}

func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{Secret: []byte(secret), AccessTTL: accessTTL, now: time.Now}
}

// WithClock overrides the issuing clock, used by tests.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	m.now = now
	return m
}

// Issue signs claims with iat and exp=now+ttl added. Caller claims named
// iat or exp are overwritten.
func (m *JWTManager) Issue(claims map[string]any, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(ttl)
	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc["iat"] = now.Unix()
	mc["exp"] = exp.Unix()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

// IssueForUser issues an access token carrying sub (email), uid and role.
func (m *JWTManager) IssueForUser(userID, email, role string) (string, time.Time, error) {
	claims := map[string]any{"sub": email, "uid": userID}
	if role != "" {
		claims["role"] = role
	}
	return m.Issue(claims, m.AccessTTL)
}

// Decode verifies the signature and expiry and returns the claims.
func (m *JWTManager) Decode(tokenStr string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return map[string]any(claims), nil
}

// AccessClaims is the typed view of a decoded access token.
type AccessClaims struct {
	UserID string
	Email  string
	Role   string
}

// DecodeAccess decodes an access token and requires the uid claim.
func (m *JWTManager) DecodeAccess(tokenStr string) (*AccessClaims, error) {
	claims, err := m.Decode(tokenStr)
	if err != nil {
		return nil, err
	}
	uid, _ := claims["uid"].(string)
	if uid == "" {
		return nil, fmt.Errorf("%w: missing uid", ErrTokenInvalid)
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	return &AccessClaims{UserID: uid, Email: sub, Role: role}, nil
}

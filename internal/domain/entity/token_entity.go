package entity

import "time"

// TokenPurpose separates reset tokens from email verification tokens
// stored in the same table.
type TokenPurpose string

const (
	PurposePasswordReset     TokenPurpose = "password_reset"
	PurposeEmailVerification TokenPurpose = "email_verification"
)

// ResetToken is a single-use opaque secret. The Token value is stored as-is:
// it is the secret the user presents and is only ever kept in this record.
type ResetToken struct {
	Token     string
	UserID    string
	Email     string
	Purpose   TokenPurpose
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ExpiredAt reports whether the token is expired at instant now.
// A token is valid strictly before ExpiresAt.
func (t *ResetToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

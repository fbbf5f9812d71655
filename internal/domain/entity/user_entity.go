package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the credential store.
// Passwords are stored as bcrypt hashes in PasswordHash; Role is attached
// on demand and never persisted with the user row.
type User struct {
	ID               string
	Email            string
	FirstName        string
	LastName         string
	Name             string
	Phone            string
	PasswordHash     string
	RoleID           string
	Role             *Role
	IsActive         bool
	IsVerified       bool
	VerificationCode string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName falls back to "first last" when Name is empty.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RoleName returns the attached role name, or "" when none is loaded.
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

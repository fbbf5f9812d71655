package entity

import (
	"strings"
	"time"
)

// Role names seeded by cmd/seed.
const (
	RoleUser            = "user"
	RoleAdmin           = "admin"
	RoleServiceProvider = "service provider"
)

// Role represents an authorization role
// kept minimal for domain use
type Role struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Is reports whether the role has the given name, ignoring case.
func (r *Role) Is(name string) bool {
	return r != nil && strings.EqualFold(strings.TrimSpace(r.Name), name)
}

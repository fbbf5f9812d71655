package entity

import "time"

// ServiceProvider is the business profile owned by a provider account.
type ServiceProvider struct {
	ID           string
	UserID       string
	BusinessName string
	Description  string
	ContactPhone string
	IsVerified   bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

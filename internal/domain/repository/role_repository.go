package repository

import (
	"context"

	"github.com/oksasatya/egarage-auth/internal/domain/entity"
)

// RoleRepository resolves roles for signin and signup.
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	// Ensure creates the role if missing and returns it.
	Ensure(ctx context.Context, name, description string) (*entity.Role, error)
}

// ProviderRepository looks up service provider profiles.
type ProviderRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.ServiceProvider, error)
	Upsert(ctx context.Context, p *entity.ServiceProvider) error
}

// AuditRepository appends auth activity rows.
type AuditRepository interface {
	Insert(ctx context.Context, a entity.Activity) error
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/egarage-auth/internal/domain/entity"
)

var (
	// ErrNotFound is returned by every repository when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate")
)

// UserRepository defines the interface for user-related database operations.
// Email lookups are case-insensitive.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, hash string, at time.Time) error
	SetVerified(ctx context.Context, id string, at time.Time) error
}

// Transactor runs fn in a single store transaction. Repositories called with
// the ctx passed to fn participate in it.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

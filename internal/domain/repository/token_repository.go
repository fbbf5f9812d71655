package repository

import (
	"context"
	"time"

	"github.com/oksasatya/egarage-auth/internal/domain/entity"
)

// ResetTokenRepository persists single-use reset and verification tokens.
type ResetTokenRepository interface {
	// Create stores t; ErrDuplicate if the token value already exists.
	Create(ctx context.Context, t *entity.ResetToken) error
	// Find looks up by exact token value without deleting.
	Find(ctx context.Context, token string) (*entity.ResetToken, error)
	// Consume deletes the token. Deleting a missing token is not an error.
	Consume(ctx context.Context, token string) error
	// ConsumeValid atomically deletes and returns the token when it has the
	// given purpose and is still valid at now; ErrNotFound otherwise.
	ConsumeValid(ctx context.Context, token string, purpose entity.TokenPurpose, now time.Time) (*entity.ResetToken, error)
	// DeleteExpired removes every token expired at now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

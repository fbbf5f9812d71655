package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/domain/repository"
)

const tokenColumns = `token, user_id::text, email, purpose, expires_at, created_at`

type ResetTokenRepository struct {
	db DBTX
}

func NewResetTokenRepository(db DBTX) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Create(ctx context.Context, t *entity.ResetToken) error {
	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO reset_tokens (token, user_id, email, purpose, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.Token, t.UserID, t.Email, string(t.Purpose), t.ExpiresAt, t.CreatedAt)
	return mapErr(err)
}

func (r *ResetTokenRepository) Find(ctx context.Context, token string) (*entity.ResetToken, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `SELECT `+tokenColumns+` FROM reset_tokens WHERE token = $1`, token)
	return scanToken(row)
}

// Consume deletes the token. A token already gone is not an error.
func (r *ResetTokenRepository) Consume(ctx context.Context, token string) error {
	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM reset_tokens WHERE token = $1`, token)
	return mapErr(err)
}

// ConsumeValid deletes and returns the token in one statement, so two
// concurrent callers can never both receive it.
func (r *ResetTokenRepository) ConsumeValid(ctx context.Context, token string, purpose entity.TokenPurpose, now time.Time) (*entity.ResetToken, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `
		DELETE FROM reset_tokens
		WHERE token = $1 AND purpose = $2 AND expires_at > $3
		RETURNING `+tokenColumns, token, string(purpose), now)
	return scanToken(row)
}

func (r *ResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM reset_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}

func scanToken(row pgx.Row) (*entity.ResetToken, error) {
	var (
		t       entity.ResetToken
		purpose string
	)
	if err := row.Scan(&t.Token, &t.UserID, &t.Email, &purpose, &t.ExpiresAt, &t.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	t.Purpose = entity.TokenPurpose(purpose)
	return &t, nil
}

var _ repository.ResetTokenRepository = (*ResetTokenRepository)(nil)

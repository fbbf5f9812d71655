package postgres

import (
	"context"
	"encoding/json"

	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/domain/repository"
)

type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, a entity.Activity) error {
	meta := []byte("{}")
	if len(a.Metadata) > 0 {
		b, err := json.Marshal(a.Metadata)
		if err != nil {
			return err
		}
		meta = b
	}
	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO audit_logs (user_id, email, action, ip, user_agent, metadata, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, nullable(a.UserID), a.Email, a.Action, nullable(a.IP), nullable(a.UserAgent), meta, a.OccurredAt)
	return mapErr(err)
}

var _ repository.AuditRepository = (*AuditRepository)(nil)

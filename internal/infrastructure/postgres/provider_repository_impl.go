package postgres

import (
	"context"

	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/domain/repository"
)

type ProviderRepository struct {
	db DBTX
}

func NewProviderRepository(db DBTX) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) GetByUserID(ctx context.Context, userID string) (*entity.ServiceProvider, error) {
	p := &entity.ServiceProvider{}
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT id::text, user_id::text, business_name, COALESCE(description, ''), COALESCE(contact_phone, ''),
			is_verified, is_active, created_at, updated_at
		FROM service_providers
		WHERE user_id = $1
	`, userID).Scan(&p.ID, &p.UserID, &p.BusinessName, &p.Description, &p.ContactPhone,
		&p.IsVerified, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// Upsert creates the profile or refreshes its descriptive fields.
func (r *ProviderRepository) Upsert(ctx context.Context, p *entity.ServiceProvider) error {
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO service_providers (user_id, business_name, description, contact_phone, is_verified, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			description = EXCLUDED.description,
			contact_phone = EXCLUDED.contact_phone,
			updated_at = now()
		RETURNING id::text, created_at, updated_at
	`, p.UserID, p.BusinessName, nullable(p.Description), nullable(p.ContactPhone), p.IsVerified, p.IsActive).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapErr(err)
}

var _ repository.ProviderRepository = (*ProviderRepository)(nil)

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/domain/repository"
)

const roleColumns = `id::text, name, COALESCE(description, ''), created_at, updated_at`

type RoleRepository struct {
	db DBTX
}

func NewRoleRepository(db DBTX) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	return scanRole(conn(ctx, r.db).QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	return scanRole(conn(ctx, r.db).QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE lower(name) = lower($1)`, name))
}

func (r *RoleRepository) Ensure(ctx context.Context, name, description string) (*entity.Role, error) {
	return scanRole(conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO roles (name, description) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET updated_at = now()
		RETURNING `+roleColumns, name, nullable(description)))
}

func scanRole(row pgx.Row) (*entity.Role, error) {
	var role entity.Role
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &role, nil
}

var _ repository.RoleRepository = (*RoleRepository)(nil)

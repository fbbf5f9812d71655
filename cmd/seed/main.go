package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/egarage-auth/config"
	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/domain/repository"
	pginfra "github.com/oksasatya/egarage-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
)

var roles = []struct{ name, description string }{
	{entity.RoleUser, "Customer account"},
	{entity.RoleAdmin, "Administrator"},
	{entity.RoleServiceProvider, "Workshop or service business"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	roleRepo := pginfra.NewRoleRepository(pool)
	users := pginfra.NewUserRepository(pool)
	hasher := helpers.NewPasswordHasher(cfg.BcryptCost)

	ids := map[string]string{}
	for _, r := range roles {
		role, err := roleRepo.Ensure(ctx, r.name, r.description)
		if err != nil {
			log.Fatalf("failed to ensure role %q: %v", r.name, err)
		}
		ids[r.name] = role.ID
	}
	fmt.Printf("roles ensured: user=%s admin=%s provider=%s\n", ids[entity.RoleUser], ids[entity.RoleAdmin], ids[entity.RoleServiceProvider])

	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		u, err := ensureUser(ctx, users, hasher, cfg.SeedAdminEmail, cfg.SeedAdminPassword, "Admin", ids[entity.RoleAdmin])
		if err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
		fmt.Printf("admin account: id=%s email=%s\n", u.ID, u.Email)
	}

	if cfg.SeedProviderEmail != "" && cfg.SeedProviderPassword != "" {
		u, err := ensureUser(ctx, users, hasher, cfg.SeedProviderEmail, cfg.SeedProviderPassword, cfg.SeedProviderBusiness, ids[entity.RoleServiceProvider])
		if err != nil {
			log.Fatalf("failed to seed provider: %v", err)
		}
		p := &entity.ServiceProvider{UserID: u.ID, BusinessName: cfg.SeedProviderBusiness, IsActive: true, IsVerified: true}
		if err := pginfra.NewProviderRepository(pool).Upsert(ctx, p); err != nil {
			log.Fatalf("failed to seed provider profile: %v", err)
		}
		fmt.Printf("provider account: id=%s email=%s business=%q\n", u.ID, u.Email, p.BusinessName)
	}
}

// ensureUser creates an active, verified account unless the email exists.
// Existing accounts are left untouched.
func ensureUser(ctx context.Context, users repository.UserRepository, hasher *helpers.PasswordHasher, email, password, name, roleID string) (*entity.User, error) {
	existing, err := users.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Email: email, Name: name, PasswordHash: hash, RoleID: roleID, IsActive: true, IsVerified: true}
	if err := users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

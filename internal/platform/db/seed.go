package db

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/auth"
	"hrms/internal/platform/config"
)

// Seed is idempotent: it ensures the default department and the bootstrap
// SUPER_ADMIN login exist, and touches nothing that is already there.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureDepartment(ctx, pool, cfg.SeedDepartment); err != nil {
		return err
	}
	return ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureDepartment(ctx context.Context, pool *pgxpool.Pool, name string) error {
	if name == "" {
		return nil
	}
	_, err := pool.Exec(ctx,
		"INSERT INTO departments (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
	return err
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	if email == "" {
		return nil
	}

	var existing int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	if password == "" {
		password = "password123"
		slog.Warn("seeding admin user with the default password, change it immediately", "email", email)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, role, is_active)
    VALUES ($1, $2, $3, TRUE)
  `, email, hash, auth.RoleSuperAdmin)
	if err != nil {
		return err
	}
	slog.Info("seeded admin user", "email", email)
	return nil
}

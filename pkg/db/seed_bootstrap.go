// Package db provides bootstrap-based seeding of provisioning parameters.
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulselog/telemetry-gateway/pkg/bootstrap"
)

const seedBootstrapLogPrefix = "db:seed_bootstrap"

// SeedBootstrap loads bootstrap config from the given path and seeds the
// provisioning_parameters table. Idempotent: an existing parameter keeps its
// operator-set value; only missing parameters are inserted.
func SeedBootstrap(ctx context.Context, pool *pgxpool.Pool, bootstrapFilePath string) error {
	slog.Info(fmt.Sprintf("%s - seeding from %s", seedBootstrapLogPrefix, bootstrapFilePath))

	cfg, err := bootstrap.LoadBootstrapConfig(bootstrapFilePath)
	if err != nil {
		return fmt.Errorf("%s - load bootstrap config: %w", seedBootstrapLogPrefix, err)
	}
	if cfg == nil || len(cfg.Parameters) == 0 {
		slog.Info(fmt.Sprintf("%s - no parameters to seed", seedBootstrapLogPrefix))
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s - begin tx: %w", seedBootstrapLogPrefix, err)
	}
	defer tx.Rollback(ctx)

	seeded := 0
	for _, p := range cfg.Parameters {
		if p.Name == "" {
			slog.Warn(fmt.Sprintf("%s - skip parameter with empty name", seedBootstrapLogPrefix))
			continue
		}
		tag, err := tx.Exec(ctx,
			`INSERT INTO provisioning_parameters (name, value, type, active, version_range)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (name) DO NOTHING`,
			p.Name, p.Value, p.Type, p.Active, p.VersionRange)
		if err != nil {
			return fmt.Errorf("%s - seed parameter %q: %w", seedBootstrapLogPrefix, p.Name, err)
		}
		seeded += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s - commit: %w", seedBootstrapLogPrefix, err)
	}

	slog.Info(fmt.Sprintf("%s - seeded %d of %d parameters", seedBootstrapLogPrefix, seeded, len(cfg.Parameters)))
	return nil
}

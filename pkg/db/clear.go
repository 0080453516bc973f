// Package db provides gateway data clearing.
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

const clearLogPrefix = "db:clear"

// ClearGateway truncates all gateway tables in dependency order. Schema is
// preserved; only data is removed. RESTART IDENTITY resets sequences.
func ClearGateway(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info(fmt.Sprintf("%s - Clearing gateway tables", clearLogPrefix))

	// Children first, then accounts. CASCADE handles any other tables that
	// reference these.
	_, err := pool.Exec(ctx, `TRUNCATE TABLE
		location_fixes,
		events,
		phones,
		provisioning_parameters,
		applications,
		carriers,
		accounts
		RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("%s - truncate failed: %w", clearLogPrefix, err)
	}

	slog.Info(fmt.Sprintf("%s - Gateway data cleared", clearLogPrefix))
	return nil
}

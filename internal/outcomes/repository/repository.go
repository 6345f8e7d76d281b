package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Definition is a call outcome definition. Type decides the state machine
// branch: intermediate outcomes reschedule, everything else finalizes.
type Definition struct {
	Key          string    `db:"key"`
	Label        string    `db:"label"`
	Type         string    `db:"type"`
	MetricBucket string    `db:"metric_bucket"`
	SortOrder    int       `db:"sort_order"`
	Active       bool      `db:"active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

const definitionColumns = `key, label, type, metric_bucket, sort_order, active, created_at, updated_at`

const definitionNotFoundMsg = "outcome definition not found"

// Repository provides database operations for outcome definitions.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new outcomes repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new definition.
func (r *Repository) Create(ctx context.Context, d *Definition) error {
	query := `
		INSERT INTO call_outcomes (key, label, type, metric_bucket, sort_order, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		d.Key, d.Label, d.Type, d.MetricBucket, d.SortOrder, d.Active, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		var pgErr interface{ SQLState() string }
		if errors.As(err, &pgErr) && pgErr.SQLState() == "23505" {
			return apperr.Conflict("outcome key already exists")
		}
		return fmt.Errorf("failed to create outcome definition: %w", err)
	}

	return nil
}

// List returns all definitions ordered for display.
func (r *Repository) List(ctx context.Context) ([]Definition, error) {
	query := `SELECT ` + definitionColumns + ` FROM call_outcomes ORDER BY sort_order ASC, key ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcome definitions: %w", err)
	}
	defer rows.Close()

	var items []Definition
	for rows.Next() {
		var d Definition
		if err := rows.Scan(&d.Key, &d.Label, &d.Type, &d.MetricBucket, &d.SortOrder, &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome definition: %w", err)
		}
		items = append(items, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcome definitions: %w", err)
	}

	return items, nil
}

// GetActiveByKey retrieves an active definition by key. Inactive definitions
// are invisible here so retired outcomes stop steering the state machine.
func (r *Repository) GetActiveByKey(ctx context.Context, key string) (*Definition, error) {
	var d Definition
	query := `SELECT ` + definitionColumns + ` FROM call_outcomes WHERE key = $1 AND active`

	err := r.pool.QueryRow(ctx, query, key).Scan(
		&d.Key, &d.Label, &d.Type, &d.MetricBucket, &d.SortOrder, &d.Active, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(definitionNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get outcome definition: %w", err)
	}

	return &d, nil
}

// UpdateParams carries a partial definition update.
type UpdateParams struct {
	Label        *string
	Type         *string
	MetricBucket *string
	SortOrder    *int
	Active       *bool
}

// Update applies a partial update to a definition.
func (r *Repository) Update(ctx context.Context, key string, params UpdateParams) error {
	query := `
		UPDATE call_outcomes SET
			label = COALESCE($2, label),
			type = COALESCE($3, type),
			metric_bucket = COALESCE($4, metric_bucket),
			sort_order = COALESCE($5, sort_order),
			active = COALESCE($6, active),
			updated_at = now()
		WHERE key = $1`

	result, err := r.pool.Exec(ctx, query,
		key, params.Label, params.Type, params.MetricBucket, params.SortOrder, params.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to update outcome definition: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(definitionNotFoundMsg)
	}

	return nil
}

// Delete removes a definition.
func (r *Repository) Delete(ctx context.Context, key string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM call_outcomes WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete outcome definition: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(definitionNotFoundMsg)
	}
	return nil
}

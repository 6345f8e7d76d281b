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

// Campaign represents the campaign database model.
// Status holds only the persisted states (active/inactive); the terminated
// state is derived at read time and never written.
type Campaign struct {
	Key         string     `db:"key"`
	Country     string     `db:"country"`
	Pipeline    string     `db:"pipeline"`
	Stage       string     `db:"stage"`
	Status      string     `db:"status"`
	CloseAt     *time.Time `db:"close_at"`
	Timezone    string     `db:"timezone"`
	NoTimeLimit bool       `db:"no_time_limit"`
	Executives  []string   `db:"executives"`
	TotalLeads  int        `db:"total_leads"`
	ValidLeads  int        `db:"valid_leads"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

const campaignNotFoundMsg = "campaign not found"

const campaignColumns = `key, country, pipeline, stage, status, close_at, timezone,
	no_time_limit, executives, total_leads, valid_leads, created_at, updated_at`

// Repository provides database operations for campaigns.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new campaigns repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new campaign.
func (r *Repository) Create(ctx context.Context, c *Campaign) error {
	query := `
		INSERT INTO campaigns (
			key, country, pipeline, stage, status, close_at, timezone,
			no_time_limit, executives, total_leads, valid_leads, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)`

	_, err := r.pool.Exec(ctx, query,
		c.Key, c.Country, c.Pipeline, c.Stage, c.Status, c.CloseAt, c.Timezone,
		c.NoTimeLimit, c.Executives, c.TotalLeads, c.ValidLeads, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("campaign key already exists")
		}
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

// GetByKey retrieves a campaign by its key.
func (r *Repository) GetByKey(ctx context.Context, key string) (*Campaign, error) {
	var c Campaign
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE key = $1`

	err := r.pool.QueryRow(ctx, query, key).Scan(
		&c.Key, &c.Country, &c.Pipeline, &c.Stage, &c.Status, &c.CloseAt, &c.Timezone,
		&c.NoTimeLimit, &c.Executives, &c.TotalLeads, &c.ValidLeads, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(campaignNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return &c, nil
}

// List retrieves campaigns, optionally filtered by persisted status,
// newest first.
func (r *Repository) List(ctx context.Context, status string) ([]Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var items []Campaign
	for rows.Next() {
		var c Campaign
		if err := rows.Scan(
			&c.Key, &c.Country, &c.Pipeline, &c.Stage, &c.Status, &c.CloseAt, &c.Timezone,
			&c.NoTimeLimit, &c.Executives, &c.TotalLeads, &c.ValidLeads, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate campaigns: %w", err)
	}

	return items, nil
}

// UpdateStatusParams carries an explicit status write. Reactivation may also
// reset the close deadline and the no-time-limit flag.
type UpdateStatusParams struct {
	Status      string
	CloseAt     *time.Time
	NoTimeLimit *bool
}

// UpdateStatus performs an explicit campaign status transition.
func (r *Repository) UpdateStatus(ctx context.Context, key string, params UpdateStatusParams) error {
	query := `
		UPDATE campaigns SET
			status = $2,
			close_at = COALESCE($3, close_at),
			no_time_limit = COALESCE($4, no_time_limit),
			updated_at = now()
		WHERE key = $1`

	result, err := r.pool.Exec(ctx, query, key, params.Status, params.CloseAt, params.NoTimeLimit)
	if err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(campaignNotFoundMsg)
	}

	return nil
}

// Delete removes a campaign. Deals cascade via the foreign key.
func (r *Repository) Delete(ctx context.Context, key string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(campaignNotFoundMsg)
	}

	return nil
}

// CountPendingDeals returns the number of pending deals for a campaign.
func (r *Repository) CountPendingDeals(ctx context.Context, key string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM campaign_deals WHERE campaign_key = $1 AND status = 'pending'`,
		key,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending deals: %w", err)
	}
	return count, nil
}

// PendingCountsByCampaign returns pending deal counts keyed by campaign.
// Campaigns with no pending deals are absent from the map.
func (r *Repository) PendingCountsByCampaign(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT campaign_key, COUNT(*) FROM campaign_deals WHERE status = 'pending' GROUP BY campaign_key`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending deals: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan pending count: %w", err)
		}
		counts[key] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending counts: %w", err)
	}

	return counts, nil
}

// RefreshLeadCounters recomputes the denormalized lead counters from the
// deals table.
func (r *Repository) RefreshLeadCounters(ctx context.Context, key string) error {
	query := `
		UPDATE campaigns c SET
			total_leads = counts.total,
			valid_leads = counts.valid,
			updated_at = now()
		FROM (
			SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE has_valid_phone) AS valid
			FROM campaign_deals WHERE campaign_key = $1
		) counts
		WHERE c.key = $1`

	_, err := r.pool.Exec(ctx, query, key)
	if err != nil {
		return fmt.Errorf("failed to refresh lead counters: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

// Package repository implements the deal store operations for the dialer:
// the atomic claim-next transaction, lease release, outcome transitions and
// the best-effort counter writes.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deal is the dialer view of a campaign deal row.
type Deal struct {
	ID             uuid.UUID  `db:"id"`
	CampaignKey    string     `db:"campaign_key"`
	CRMDealID      string     `db:"crm_deal_id"`
	Title          string     `db:"title"`
	ContactName    string     `db:"contact_name"`
	PhonePrimary   *string    `db:"phone_primary"`
	PhoneSecondary *string    `db:"phone_secondary"`
	HasValidPhone  bool       `db:"has_valid_phone"`
	Status         string     `db:"status"`
	Attempts       int        `db:"attempts"`
	Gestions       int        `db:"gestions"`
	LastAttemptAt  *time.Time `db:"last_attempt_at"`
	NextAttemptAt  *time.Time `db:"next_attempt_at"`
	LockExpiresAt  *time.Time `db:"lock_expires_at"`
	AssignedTo     *uuid.UUID `db:"assigned_to"`
	LastOutcome    *string    `db:"last_outcome"`
	CompletedAt    *time.Time `db:"completed_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// ClaimPolicy carries the eligibility thresholds evaluated inside the claim
// transaction.
type ClaimPolicy struct {
	LeaseMinutes            int
	MaxAttempts             int
	MaxGestions             int
	MinHoursBetweenAttempts int
}

const dealColumns = `id, campaign_key, crm_deal_id, title, contact_name,
	phone_primary, phone_secondary, has_valid_phone, status, attempts, gestions,
	last_attempt_at, next_attempt_at, lock_expires_at, assigned_to, last_outcome,
	completed_at, created_at, updated_at`

const dealColumnsPrefixed = `d.id, d.campaign_key, d.crm_deal_id, d.title, d.contact_name,
	d.phone_primary, d.phone_secondary, d.has_valid_phone, d.status, d.attempts, d.gestions,
	d.last_attempt_at, d.next_attempt_at, d.lock_expires_at, d.assigned_to, d.last_outcome,
	d.completed_at, d.created_at, d.updated_at`

// eligibleDeal is the claim predicate. A deal is claimable when it is pending
// with a usable phone, under both counters, outside its cooldown window and
// not held by a live lease. The cooldown falls back to last_attempt_at plus
// the configured minimum gap when no explicit retry time is set.
const eligibleDeal = `
	status = 'pending'
	AND has_valid_phone
	AND attempts < $2
	AND gestions < $3
	AND (lock_expires_at IS NULL OR lock_expires_at <= now())
	AND (CASE
		WHEN next_attempt_at IS NOT NULL THEN next_attempt_at <= now()
		WHEN last_attempt_at IS NOT NULL THEN last_attempt_at + make_interval(hours => $4) <= now()
		ELSE TRUE
	END)`

// Repository provides database operations for dialer deals.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new dialer repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ClaimNext atomically selects and leases the best eligible deal of a
// campaign. The row lock from FOR UPDATE SKIP LOCKED guarantees two racing
// operators never lease the same deal; losers simply skip to the next row or
// come back empty. Returns (nil, nil) when nothing is claimable.
func (r *Repository) ClaimNext(ctx context.Context, campaignKey string, operatorID uuid.UUID, policy ClaimPolicy) (*Deal, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		WITH next_deal AS (
			SELECT id FROM campaign_deals
			WHERE campaign_key = $1 AND ` + eligibleDeal + `
			ORDER BY attempts ASC, updated_at ASC, id ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE campaign_deals d SET
			assigned_to = $5,
			lock_expires_at = now() + make_interval(mins => $6),
			updated_at = now()
		FROM next_deal
		WHERE d.id = next_deal.id
		RETURNING ` + dealColumnsPrefixed

	var deal Deal
	err = tx.QueryRow(ctx, query,
		campaignKey, policy.MaxAttempts, policy.MaxGestions, policy.MinHoursBetweenAttempts,
		operatorID, policy.LeaseMinutes,
	).Scan(dealFields(&deal)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim deal: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	return &deal, nil
}

// Release drops a lease by pushing its expiry into the past. Zero affected
// rows is still success so repeated releases and releases of already-expired
// leases are harmless.
func (r *Repository) Release(ctx context.Context, campaignKey string, dealID uuid.UUID) error {
	query := `
		UPDATE campaign_deals SET
			lock_expires_at = now() - interval '1 second',
			assigned_to = NULL,
			updated_at = now()
		WHERE id = $1 AND campaign_key = $2 AND status = 'pending'`

	if _, err := r.pool.Exec(ctx, query, dealID, campaignKey); err != nil {
		return fmt.Errorf("failed to release deal: %w", err)
	}
	return nil
}

// GetByID retrieves a deal by id within a campaign.
func (r *Repository) GetByID(ctx context.Context, campaignKey string, dealID uuid.UUID) (*Deal, error) {
	var deal Deal
	query := `SELECT ` + dealColumns + ` FROM campaign_deals WHERE id = $1 AND campaign_key = $2`

	err := r.pool.QueryRow(ctx, query, dealID, campaignKey).Scan(dealFields(&deal)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("deal not found")
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	return &deal, nil
}

// RecordCallStart bumps the attempt counter and stamps the attempt time.
// Attempt counting is driven by call starts, not by outcome submissions.
func (r *Repository) RecordCallStart(ctx context.Context, campaignKey string, dealID uuid.UUID) error {
	query := `
		UPDATE campaign_deals SET
			attempts = attempts + 1,
			last_attempt_at = now(),
			updated_at = now()
		WHERE id = $1 AND campaign_key = $2 AND status = 'pending'`

	if _, err := r.pool.Exec(ctx, query, dealID, campaignKey); err != nil {
		return fmt.Errorf("failed to record call start: %w", err)
	}
	return nil
}

// IncrementGestions bumps the gestion counter. Runs as its own statement so
// a failure here never rolls back the status transition it accompanies.
func (r *Repository) IncrementGestions(ctx context.Context, dealID uuid.UUID) error {
	query := `UPDATE campaign_deals SET gestions = gestions + 1, updated_at = now() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, dealID); err != nil {
		return fmt.Errorf("failed to increment gestions: %w", err)
	}
	return nil
}

// Finalize closes a deal: done status, completion stamp, lock and retry
// schedule cleared, assignment kept on the closing operator. Returns a
// conflict when the deal is no longer pending.
func (r *Repository) Finalize(ctx context.Context, dealID uuid.UUID, operatorID uuid.UUID, outcome *string) error {
	query := `
		UPDATE campaign_deals SET
			status = 'done',
			last_outcome = COALESCE($3, last_outcome),
			completed_at = now(),
			lock_expires_at = NULL,
			next_attempt_at = NULL,
			assigned_to = $2,
			updated_at = now()
		WHERE id = $1 AND status = 'pending'`

	result, err := r.pool.Exec(ctx, query, dealID, operatorID, outcome)
	if err != nil {
		return fmt.Errorf("failed to finalize deal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.Conflict("deal is already done")
	}
	return nil
}

// Reschedule keeps a deal pending: the lock is dropped so the deal is
// reclaimable right away unless nextAttemptAt pushes it into a cooldown.
func (r *Repository) Reschedule(ctx context.Context, dealID uuid.UUID, outcome *string, nextAttemptAt *time.Time) error {
	query := `
		UPDATE campaign_deals SET
			last_outcome = COALESCE($2, last_outcome),
			next_attempt_at = $3,
			lock_expires_at = NULL,
			assigned_to = NULL,
			updated_at = now()
		WHERE id = $1 AND status = 'pending'`

	result, err := r.pool.Exec(ctx, query, dealID, outcome, nextAttemptAt)
	if err != nil {
		return fmt.Errorf("failed to reschedule deal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.Conflict("deal is already done")
	}
	return nil
}

// MarkDone finalizes a single deal without outcome metadata, used by the
// best-effort bulk path. Zero rows (already done or unknown id) is reported
// back so the caller can count it, not fail the batch.
func (r *Repository) MarkDone(ctx context.Context, campaignKey string, dealID uuid.UUID, operatorID uuid.UUID) (bool, error) {
	query := `
		UPDATE campaign_deals SET
			status = 'done',
			completed_at = now(),
			lock_expires_at = NULL,
			next_attempt_at = NULL,
			assigned_to = $3,
			updated_at = now()
		WHERE id = $1 AND campaign_key = $2 AND status = 'pending'`

	result, err := r.pool.Exec(ctx, query, dealID, campaignKey, operatorID)
	if err != nil {
		return false, fmt.Errorf("failed to mark deal done: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// UpdatePhones applies a manual phone correction.
func (r *Repository) UpdatePhones(ctx context.Context, campaignKey string, dealID uuid.UUID, primary, secondary *string, hasValidPhone bool) error {
	query := `
		UPDATE campaign_deals SET
			phone_primary = $3,
			phone_secondary = $4,
			has_valid_phone = $5,
			updated_at = now()
		WHERE id = $1 AND campaign_key = $2`

	result, err := r.pool.Exec(ctx, query, dealID, campaignKey, primary, secondary, hasValidPhone)
	if err != nil {
		return fmt.Errorf("failed to update deal phones: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("deal not found")
	}
	return nil
}

// CountPending returns the number of pending deals for a campaign.
func (r *Repository) CountPending(ctx context.Context, campaignKey string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM campaign_deals WHERE campaign_key = $1 AND status = 'pending'`,
		campaignKey,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending deals: %w", err)
	}
	return count, nil
}

func dealFields(d *Deal) []interface{} {
	return []interface{}{
		&d.ID, &d.CampaignKey, &d.CRMDealID, &d.Title, &d.ContactName,
		&d.PhonePrimary, &d.PhoneSecondary, &d.HasValidPhone, &d.Status,
		&d.Attempts, &d.Gestions, &d.LastAttemptAt, &d.NextAttemptAt,
		&d.LockExpiresAt, &d.AssignedTo, &d.LastOutcome, &d.CompletedAt,
		&d.CreatedAt, &d.UpdatedAt,
	}
}


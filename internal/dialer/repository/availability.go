package repository

import (
	"context"
	"fmt"
	"time"
)

// Availability buckets, in classification order. Each pending row lands in
// exactly the first bucket that matches.
const (
	BucketNoPhone     = "no_phone"
	BucketMaxAttempts = "max_attempts"
	BucketMaxGestions = "max_gestions"
	BucketCooldown    = "cooldown"
	BucketLocked      = "locked"
	BucketEligible    = "eligible"
)

// Availability is the raw diagnostic scan of a campaign's pending deals.
type Availability struct {
	Buckets      map[string]int
	TotalPending int
	NextRetryAt  *time.Time
}

// ScanAvailability classifies every pending deal of a campaign into one
// bucket and reports the earliest moment a cooldown row becomes claimable.
// Diagnostic only; the claim predicate is enforced independently.
func (r *Repository) ScanAvailability(ctx context.Context, campaignKey string, policy ClaimPolicy) (*Availability, error) {
	query := `
		SELECT
			CASE
				WHEN NOT has_valid_phone THEN 'no_phone'
				WHEN attempts >= $2 THEN 'max_attempts'
				WHEN gestions >= $3 THEN 'max_gestions'
				WHEN (next_attempt_at IS NOT NULL AND next_attempt_at > now())
					OR (next_attempt_at IS NULL AND last_attempt_at IS NOT NULL
						AND last_attempt_at + make_interval(hours => $4) > now()) THEN 'cooldown'
				WHEN lock_expires_at IS NOT NULL AND lock_expires_at > now() THEN 'locked'
				ELSE 'eligible'
			END AS bucket,
			COUNT(*),
			MIN(COALESCE(next_attempt_at, last_attempt_at + make_interval(hours => $4)))
				FILTER (WHERE COALESCE(next_attempt_at, last_attempt_at + make_interval(hours => $4)) > now())
		FROM campaign_deals
		WHERE campaign_key = $1 AND status = 'pending'
		GROUP BY bucket`

	rows, err := r.pool.Query(ctx, query,
		campaignKey, policy.MaxAttempts, policy.MaxGestions, policy.MinHoursBetweenAttempts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan availability: %w", err)
	}
	defer rows.Close()

	result := &Availability{Buckets: make(map[string]int)}
	for rows.Next() {
		var bucket string
		var count int
		var retryAt *time.Time
		if err := rows.Scan(&bucket, &count, &retryAt); err != nil {
			return nil, fmt.Errorf("failed to scan availability bucket: %w", err)
		}
		result.Buckets[bucket] = count
		result.TotalPending += count
		if bucket == BucketCooldown && retryAt != nil {
			result.NextRetryAt = retryAt
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate availability buckets: %w", err)
	}

	return result, nil
}

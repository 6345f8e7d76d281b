package service

import (
	"context"
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer/repository"
)

// SummaryNone means no single reason explains the campaign's state.
const SummaryNone = "none"

// AvailabilityView is the operator-facing diagnostic for a campaign: why
// nothing (or something) is claimable right now.
type AvailabilityView struct {
	CampaignKey  string         `json:"campaignKey"`
	Buckets      map[string]int `json:"buckets"`
	TotalPending int            `json:"totalPending"`
	NextRetryAt  *time.Time     `json:"nextRetryAt,omitempty"`
	Summary      string         `json:"summary"`
	GeneratedAt  time.Time      `json:"generatedAt"`
}

// Availability classifies a campaign's pending deals. Views are served from
// the short-TTL cache when present; dashboards poll this endpoint and the
// scan touches every pending row.
func (s *Service) Availability(ctx context.Context, campaignKey string) (*AvailabilityView, error) {
	if _, err := s.campaigns.GetByKey(ctx, campaignKey); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if view, ok := s.cache.Get(ctx, campaignKey); ok {
			return view, nil
		}
	}

	scan, err := s.deals.ScanAvailability(ctx, campaignKey, s.policy)
	if err != nil {
		return nil, err
	}

	view := &AvailabilityView{
		CampaignKey:  campaignKey,
		Buckets:      fullBuckets(scan.Buckets),
		TotalPending: scan.TotalPending,
		NextRetryAt:  scan.NextRetryAt,
		Summary:      Summarize(scan),
		GeneratedAt:  time.Now().UTC(),
	}

	if s.cache != nil {
		s.cache.Set(ctx, campaignKey, view)
	}

	return view, nil
}

// Summarize collapses the bucket counts into a single-reason label. Only a
// unanimous bucket names itself; a mixed population with live leases reads
// as locked, anything else gives no single reason.
func Summarize(scan *repository.Availability) string {
	if scan.TotalPending == 0 {
		return SummaryNone
	}

	for bucket, count := range scan.Buckets {
		if count == scan.TotalPending {
			return bucket
		}
	}

	if scan.Buckets[repository.BucketLocked] > 0 {
		return repository.BucketLocked
	}

	return SummaryNone
}

// fullBuckets fills in zero counts so the response shape is stable for
// consumers regardless of which buckets the scan produced.
func fullBuckets(counts map[string]int) map[string]int {
	out := map[string]int{
		repository.BucketNoPhone:     0,
		repository.BucketMaxAttempts: 0,
		repository.BucketMaxGestions: 0,
		repository.BucketCooldown:    0,
		repository.BucketLocked:      0,
		repository.BucketEligible:    0,
	}
	for bucket, count := range counts {
		out[bucket] = count
	}
	return out
}

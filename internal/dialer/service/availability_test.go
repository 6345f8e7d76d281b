package service

import (
	"context"
	"testing"
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer/repository"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		buckets map[string]int
		want    string
	}{
		{"zero pending", map[string]int{}, SummaryNone},
		{"all in one bucket", map[string]int{repository.BucketCooldown: 4}, repository.BucketCooldown},
		{"all exhausted attempts", map[string]int{repository.BucketMaxAttempts: 2}, repository.BucketMaxAttempts},
		{"mixed with locks", map[string]int{repository.BucketCooldown: 2, repository.BucketLocked: 1}, repository.BucketLocked},
		{"mixed without locks", map[string]int{repository.BucketCooldown: 2, repository.BucketEligible: 3}, SummaryNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := 0
			for _, c := range tt.buckets {
				total += c
			}
			scan := &repository.Availability{Buckets: tt.buckets, TotalPending: total}
			if got := Summarize(scan); got != tt.want {
				t.Errorf("Summarize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAvailabilityView(t *testing.T) {
	retryAt := time.Now().Add(time.Hour).UTC()
	deals := &fakeDealStore{
		scan: &repository.Availability{
			Buckets: map[string]int{
				repository.BucketNoPhone:  1,
				repository.BucketCooldown: 2,
				repository.BucketEligible: 3,
			},
			TotalPending: 6,
			NextRetryAt:  &retryAt,
		},
	}
	svc := newTestService(deals, &fakeCampaignStore{campaign: activeCampaign()}, nil)

	view, err := svc.Availability(context.Background(), "co-arriendos-contacto-20260901")
	if err != nil {
		t.Fatalf("Availability() error = %v", err)
	}

	if len(view.Buckets) != 6 {
		t.Errorf("buckets = %d, want all 6 present", len(view.Buckets))
	}

	sum := 0
	for _, c := range view.Buckets {
		sum += c
	}
	if sum != view.TotalPending {
		t.Errorf("bucket sum = %d, want totalPending %d", sum, view.TotalPending)
	}

	if view.Summary != SummaryNone {
		t.Errorf("summary = %q, want %q", view.Summary, SummaryNone)
	}
	if view.NextRetryAt == nil || !view.NextRetryAt.Equal(retryAt) {
		t.Errorf("nextRetryAt = %v, want %v", view.NextRetryAt, retryAt)
	}
}

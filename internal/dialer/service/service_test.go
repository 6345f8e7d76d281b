package service

import (
	"context"
	"errors"
	"testing"
	"time"

	camprepo "github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/repository"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer/repository"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/apperr"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/events"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/logger"

	"github.com/google/uuid"
)

type fakeDealStore struct {
	deal          *repository.Deal
	claimResult   *repository.Deal
	pending       int
	scan          *repository.Availability
	finalized     bool
	rescheduled   bool
	gestionsBumps int
	releases      int
	lastOutcome   *string
	lastNextAt    *time.Time
	lastOperator  uuid.UUID
	markedDone    []uuid.UUID
	failMarkDone  map[uuid.UUID]bool
	doneIDs       map[uuid.UUID]bool
	callStartKeys []string
}

func (f *fakeDealStore) ClaimNext(ctx context.Context, campaignKey string, operatorID uuid.UUID, policy repository.ClaimPolicy) (*repository.Deal, error) {
	return f.claimResult, nil
}

func (f *fakeDealStore) Release(ctx context.Context, campaignKey string, dealID uuid.UUID) error {
	f.releases++
	return nil
}

func (f *fakeDealStore) GetByID(ctx context.Context, campaignKey string, dealID uuid.UUID) (*repository.Deal, error) {
	if f.deal == nil {
		return nil, apperr.NotFound("deal not found")
	}
	return f.deal, nil
}

func (f *fakeDealStore) RecordCallStart(ctx context.Context, campaignKey string, dealID uuid.UUID) error {
	f.callStartKeys = append(f.callStartKeys, campaignKey)
	return nil
}

func (f *fakeDealStore) IncrementGestions(ctx context.Context, dealID uuid.UUID) error {
	f.gestionsBumps++
	return nil
}

func (f *fakeDealStore) Finalize(ctx context.Context, dealID uuid.UUID, operatorID uuid.UUID, outcome *string) error {
	f.finalized = true
	f.lastOperator = operatorID
	f.lastOutcome = outcome
	return nil
}

func (f *fakeDealStore) Reschedule(ctx context.Context, dealID uuid.UUID, outcome *string, nextAttemptAt *time.Time) error {
	f.rescheduled = true
	f.lastOutcome = outcome
	f.lastNextAt = nextAttemptAt
	return nil
}

func (f *fakeDealStore) MarkDone(ctx context.Context, campaignKey string, dealID uuid.UUID, operatorID uuid.UUID) (bool, error) {
	if f.failMarkDone[dealID] {
		return false, context.DeadlineExceeded
	}
	if f.doneIDs[dealID] {
		return false, nil
	}
	f.markedDone = append(f.markedDone, dealID)
	return true, nil
}

func (f *fakeDealStore) UpdatePhones(ctx context.Context, campaignKey string, dealID uuid.UUID, primary, secondary *string, hasValidPhone bool) error {
	f.deal.PhonePrimary = primary
	f.deal.PhoneSecondary = secondary
	f.deal.HasValidPhone = hasValidPhone
	return nil
}

func (f *fakeDealStore) CountPending(ctx context.Context, campaignKey string) (int, error) {
	return f.pending, nil
}

func (f *fakeDealStore) ScanAvailability(ctx context.Context, campaignKey string, policy repository.ClaimPolicy) (*repository.Availability, error) {
	return f.scan, nil
}

type fakeCampaignStore struct {
	campaign *camprepo.Campaign
}

func (f *fakeCampaignStore) GetByKey(ctx context.Context, key string) (*camprepo.Campaign, error) {
	if f.campaign == nil {
		return nil, apperr.NotFound("campaign not found")
	}
	return f.campaign, nil
}

type fakeCatalog struct {
	types map[string]string
	err   error
}

func (f *fakeCatalog) ActiveOutcomeType(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	t, ok := f.types[key]
	if !ok {
		return "", apperr.NotFound("outcome definition not found")
	}
	return t, nil
}

type fakeDialerConfig struct{}

func (fakeDialerConfig) GetLeaseMinutes() int            { return 15 }
func (fakeDialerConfig) GetMaxAttempts() int             { return 3 }
func (fakeDialerConfig) GetMaxGestions() int             { return 6 }
func (fakeDialerConfig) GetMinHoursBetweenAttempts() int { return 4 }

func newTestService(deals *fakeDealStore, campaigns *fakeCampaignStore, catalog *fakeCatalog) *Service {
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	if catalog == nil {
		catalog = &fakeCatalog{}
	}
	return New(deals, campaigns, catalog, nil, fakeDialerConfig{}, log, bus)
}

func activeCampaign() *camprepo.Campaign {
	future := time.Now().Add(24 * time.Hour)
	return &camprepo.Campaign{
		Key:     "co-arriendos-contacto-20260901",
		Country: "CO",
		Status:  "active",
		CloseAt: &future,
	}
}

func pendingDeal() *repository.Deal {
	return &repository.Deal{
		ID:          uuid.New(),
		CampaignKey: "co-arriendos-contacto-20260901",
		Status:      "pending",
		Attempts:    1,
		Gestions:    2,
	}
}

func TestClaimGating(t *testing.T) {
	operator := uuid.New()
	past := time.Now().Add(-time.Hour)

	t.Run("inactive campaign conflicts", func(t *testing.T) {
		campaign := activeCampaign()
		campaign.Status = "inactive"
		svc := newTestService(&fakeDealStore{}, &fakeCampaignStore{campaign: campaign}, nil)

		_, err := svc.Claim(context.Background(), campaign.Key, operator, "op@houm.com")
		if apperr.GetKind(err) != apperr.KindConflict {
			t.Fatalf("Claim() error kind = %v, want conflict", apperr.GetKind(err))
		}
	})

	t.Run("past close date conflicts", func(t *testing.T) {
		campaign := activeCampaign()
		campaign.CloseAt = &past
		svc := newTestService(&fakeDealStore{}, &fakeCampaignStore{campaign: campaign}, nil)

		_, err := svc.Claim(context.Background(), campaign.Key, operator, "op@houm.com")
		if apperr.GetKind(err) != apperr.KindConflict {
			t.Fatalf("Claim() error kind = %v, want conflict", apperr.GetKind(err))
		}
	})

	t.Run("past close date allowed without time limit", func(t *testing.T) {
		campaign := activeCampaign()
		campaign.CloseAt = &past
		campaign.NoTimeLimit = true
		deals := &fakeDealStore{claimResult: pendingDeal(), pending: 3}
		svc := newTestService(deals, &fakeCampaignStore{campaign: campaign}, nil)

		deal, err := svc.Claim(context.Background(), campaign.Key, operator, "op@houm.com")
		if err != nil {
			t.Fatalf("Claim() error = %v", err)
		}
		if deal == nil {
			t.Fatal("Claim() = nil, want deal")
		}
	})

	t.Run("allow-list blocks outsiders", func(t *testing.T) {
		campaign := activeCampaign()
		campaign.Executives = []string{"alpha@houm.com"}
		svc := newTestService(&fakeDealStore{claimResult: pendingDeal()}, &fakeCampaignStore{campaign: campaign}, nil)

		_, err := svc.Claim(context.Background(), campaign.Key, operator, "other@houm.com")
		if apperr.GetKind(err) != apperr.KindForbidden {
			t.Fatalf("Claim() error kind = %v, want forbidden", apperr.GetKind(err))
		}
	})

	t.Run("allow-list admits listed operator case-insensitively", func(t *testing.T) {
		campaign := activeCampaign()
		campaign.Executives = []string{"alpha@houm.com"}
		svc := newTestService(&fakeDealStore{claimResult: pendingDeal(), pending: 3}, &fakeCampaignStore{campaign: campaign}, nil)

		deal, err := svc.Claim(context.Background(), campaign.Key, operator, "Alpha@Houm.com")
		if err != nil {
			t.Fatalf("Claim() error = %v", err)
		}
		if deal == nil {
			t.Fatal("Claim() = nil, want deal")
		}
	})

	t.Run("no eligible deal is empty not error", func(t *testing.T) {
		svc := newTestService(&fakeDealStore{pending: 3}, &fakeCampaignStore{campaign: activeCampaign()}, nil)

		deal, err := svc.Claim(context.Background(), "co-arriendos-contacto-20260901", operator, "op@houm.com")
		if err != nil {
			t.Fatalf("Claim() error = %v", err)
		}
		if deal != nil {
			t.Fatalf("Claim() = %v, want nil", deal)
		}
	})

	t.Run("exhausted campaign conflicts", func(t *testing.T) {
		svc := newTestService(&fakeDealStore{pending: 0}, &fakeCampaignStore{campaign: activeCampaign()}, nil)

		_, err := svc.Claim(context.Background(), "co-arriendos-contacto-20260901", operator, "op@houm.com")
		if apperr.GetKind(err) != apperr.KindConflict {
			t.Fatalf("Claim() error kind = %v, want conflict", apperr.GetKind(err))
		}
	})

	t.Run("unknown campaign not found", func(t *testing.T) {
		svc := newTestService(&fakeDealStore{}, &fakeCampaignStore{}, nil)

		_, err := svc.Claim(context.Background(), "nope", operator, "op@houm.com")
		if apperr.GetKind(err) != apperr.KindNotFound {
			t.Fatalf("Claim() error kind = %v, want not found", apperr.GetKind(err))
		}
	})
}

func TestSubmitOutcomeFinalization(t *testing.T) {
	operator := uuid.New()
	catalog := &fakeCatalog{types: map[string]string{
		"no_answer": "intermediate",
		"sold":      "final",
	}}
	nextAt := time.Now().Add(2 * time.Hour)

	tests := []struct {
		name         string
		params       OutcomeParams
		wantFinalize bool
	}{
		{"final outcome finalizes", OutcomeParams{Outcome: "sold"}, true},
		{"intermediate outcome reschedules", OutcomeParams{Outcome: "no_answer", NextAttemptAt: &nextAt}, false},
		{"skip always finalizes", OutcomeParams{Outcome: "no_answer", Skip: true}, true},
		{"force done always finalizes", OutcomeParams{Outcome: "no_answer", ForceDone: true}, true},
		{"unknown outcome defaults to final", OutcomeParams{Outcome: "mystery"}, true},
		{"no outcome and no flags reschedules", OutcomeParams{NextAttemptAt: &nextAt}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deals := &fakeDealStore{deal: pendingDeal(), pending: 5}
			svc := newTestService(deals, &fakeCampaignStore{campaign: activeCampaign()}, catalog)

			_, err := svc.SubmitOutcome(context.Background(), "co-arriendos-contacto-20260901", deals.deal.ID, operator, tt.params)
			if err != nil {
				t.Fatalf("SubmitOutcome() error = %v", err)
			}

			if deals.gestionsBumps != 1 {
				t.Errorf("gestion bumps = %d, want 1", deals.gestionsBumps)
			}
			if deals.finalized != tt.wantFinalize {
				t.Errorf("finalized = %v, want %v", deals.finalized, tt.wantFinalize)
			}
			if deals.rescheduled == tt.wantFinalize {
				t.Errorf("rescheduled = %v, want %v", deals.rescheduled, !tt.wantFinalize)
			}
			if tt.wantFinalize && deals.lastOperator != operator {
				t.Errorf("finalize operator = %v, want %v", deals.lastOperator, operator)
			}
			if !tt.wantFinalize && tt.params.NextAttemptAt != nil && deals.lastNextAt == nil {
				t.Error("reschedule dropped nextAttemptAt")
			}
		})
	}

	t.Run("catalog failure propagates instead of closing the deal", func(t *testing.T) {
		deals := &fakeDealStore{deal: pendingDeal(), pending: 5}
		broken := &fakeCatalog{err: errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")}
		svc := newTestService(deals, &fakeCampaignStore{campaign: activeCampaign()}, broken)

		_, err := svc.SubmitOutcome(context.Background(), deals.deal.CampaignKey, deals.deal.ID, operator, OutcomeParams{Outcome: "no_answer"})
		if err == nil {
			t.Fatal("SubmitOutcome() error = nil, want catalog failure")
		}
		if deals.finalized {
			t.Error("catalog failure must not finalize the deal")
		}
		if deals.rescheduled {
			t.Error("catalog failure must not reschedule the deal")
		}
	})

	t.Run("done deal conflicts", func(t *testing.T) {
		deal := pendingDeal()
		deal.Status = "done"
		deals := &fakeDealStore{deal: deal}
		svc := newTestService(deals, &fakeCampaignStore{campaign: activeCampaign()}, catalog)

		_, err := svc.SubmitOutcome(context.Background(), deal.CampaignKey, deal.ID, operator, OutcomeParams{Outcome: "sold"})
		if apperr.GetKind(err) != apperr.KindConflict {
			t.Fatalf("SubmitOutcome() error kind = %v, want conflict", apperr.GetKind(err))
		}
		if deals.gestionsBumps != 0 {
			t.Errorf("gestion bumps = %d, want 0", deals.gestionsBumps)
		}
	})
}

func TestRecordCallStartScopedToCampaign(t *testing.T) {
	deals := &fakeDealStore{}
	svc := newTestService(deals, &fakeCampaignStore{campaign: activeCampaign()}, nil)

	svc.RecordCallStart(context.Background(), "co-arriendos-contacto-20260901", uuid.New())

	if len(deals.callStartKeys) != 1 || deals.callStartKeys[0] != "co-arriendos-contacto-20260901" {
		t.Fatalf("call start keys = %v, want the campaign key passed through", deals.callStartKeys)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	deals := &fakeDealStore{}
	svc := newTestService(deals, &fakeCampaignStore{campaign: activeCampaign()}, nil)
	id := uuid.New()
	operator := uuid.New()

	for i := 0; i < 3; i++ {
		if err := svc.Release(context.Background(), "co-arriendos-contacto-20260901", id, operator); err != nil {
			t.Fatalf("Release() call %d error = %v", i+1, err)
		}
	}

	if deals.releases != 3 {
		t.Fatalf("releases = %d, want 3", deals.releases)
	}
}

func TestMarkManyDone(t *testing.T) {
	operator := uuid.New()
	good := uuid.New()
	alreadyDone := uuid.New()
	failing := uuid.New()

	deals := &fakeDealStore{
		pending:      2,
		doneIDs:      map[uuid.UUID]bool{alreadyDone: true},
		failMarkDone: map[uuid.UUID]bool{failing: true},
	}
	svc := newTestService(deals, &fakeCampaignStore{campaign: activeCampaign()}, nil)

	result, err := svc.MarkManyDone(context.Background(), "co-arriendos-contacto-20260901",
		[]uuid.UUID{good, alreadyDone, failing}, operator)
	if err != nil {
		t.Fatalf("MarkManyDone() error = %v", err)
	}

	if result.Done != 1 {
		t.Errorf("Done = %d, want 1", result.Done)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}

	if _, err := svc.MarkManyDone(context.Background(), "co-arriendos-contacto-20260901", nil, operator); apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("MarkManyDone(empty) error kind = %v, want validation", apperr.GetKind(err))
	}
}

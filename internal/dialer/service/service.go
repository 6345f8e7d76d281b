// Package service implements the dialer work distribution logic: lease
// claims, outcome transitions, bulk finalization and availability reporting.
package service

import (
	"context"
	"strings"
	"time"

	camprepo "github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/repository"
	campsvc "github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/service"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer/repository"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/events"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/apperr"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/config"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/logger"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/phone"

	"github.com/google/uuid"
)

// DealStore is the deal persistence surface the service depends on.
type DealStore interface {
	ClaimNext(ctx context.Context, campaignKey string, operatorID uuid.UUID, policy repository.ClaimPolicy) (*repository.Deal, error)
	Release(ctx context.Context, campaignKey string, dealID uuid.UUID) error
	GetByID(ctx context.Context, campaignKey string, dealID uuid.UUID) (*repository.Deal, error)
	RecordCallStart(ctx context.Context, campaignKey string, dealID uuid.UUID) error
	IncrementGestions(ctx context.Context, dealID uuid.UUID) error
	Finalize(ctx context.Context, dealID uuid.UUID, operatorID uuid.UUID, outcome *string) error
	Reschedule(ctx context.Context, dealID uuid.UUID, outcome *string, nextAttemptAt *time.Time) error
	MarkDone(ctx context.Context, campaignKey string, dealID uuid.UUID, operatorID uuid.UUID) (bool, error)
	UpdatePhones(ctx context.Context, campaignKey string, dealID uuid.UUID, primary, secondary *string, hasValidPhone bool) error
	CountPending(ctx context.Context, campaignKey string) (int, error)
	ScanAvailability(ctx context.Context, campaignKey string, policy repository.ClaimPolicy) (*repository.Availability, error)
}

// CampaignStore looks up campaigns for status and allow-list gating.
type CampaignStore interface {
	GetByKey(ctx context.Context, key string) (*camprepo.Campaign, error)
}

// OutcomeCatalog resolves an outcome key to its type. Implementations return
// a not-found error for unknown or inactive keys.
type OutcomeCatalog interface {
	ActiveOutcomeType(ctx context.Context, key string) (string, error)
}

// SnapshotCache is an optional short-TTL cache for availability views.
type SnapshotCache interface {
	Get(ctx context.Context, campaignKey string) (*AvailabilityView, bool)
	Set(ctx context.Context, campaignKey string, view *AvailabilityView)
}

const outcomeTypeIntermediate = "intermediate"

// Service orchestrates dialer operations.
type Service struct {
	deals     DealStore
	campaigns CampaignStore
	outcomes  OutcomeCatalog
	cache     SnapshotCache
	policy    repository.ClaimPolicy
	logger    *logger.Logger
	eventBus  events.Bus
}

// New creates the dialer service. cache may be nil to disable availability
// snapshot caching.
func New(deals DealStore, campaigns CampaignStore, outcomes OutcomeCatalog, cache SnapshotCache, cfg config.DialerConfig, log *logger.Logger, bus events.Bus) *Service {
	return &Service{
		deals:     deals,
		campaigns: campaigns,
		outcomes:  outcomes,
		cache:     cache,
		policy: repository.ClaimPolicy{
			LeaseMinutes:            cfg.GetLeaseMinutes(),
			MaxAttempts:             cfg.GetMaxAttempts(),
			MaxGestions:             cfg.GetMaxGestions(),
			MinHoursBetweenAttempts: cfg.GetMinHoursBetweenAttempts(),
		},
		logger:   log,
		eventBus: bus,
	}
}

// Claim leases the next eligible deal of a campaign to the operator.
// Returns (nil, nil) when no deal is claimable, which is a normal empty
// result rather than an error.
func (s *Service) Claim(ctx context.Context, campaignKey string, operatorID uuid.UUID, operatorEmail string) (*repository.Deal, error) {
	campaign, err := s.campaigns.GetByKey(ctx, campaignKey)
	if err != nil {
		return nil, err
	}

	if err := s.claimable(campaign, operatorEmail); err != nil {
		return nil, err
	}

	pending, err := s.deals.CountPending(ctx, campaignKey)
	if err != nil {
		return nil, err
	}
	if pending == 0 {
		return nil, apperr.Conflict("campaign is terminated")
	}

	deal, err := s.deals.ClaimNext(ctx, campaignKey, operatorID, s.policy)
	if err != nil {
		return nil, err
	}

	s.logger.ClaimEvent(campaignKey, operatorID.String(), deal != nil)
	return deal, nil
}

// claimable gates claims on campaign state: explicit inactivity and
// close-date termination both block, and a non-empty executive allow-list
// restricts who may work the campaign. Exhaustion, the other terminated
// form, needs a pending count and is checked separately in Claim so both
// report the same conflict.
func (s *Service) claimable(campaign *camprepo.Campaign, operatorEmail string) error {
	if campaign.Status == campsvc.StatusInactive {
		return apperr.Conflict("campaign is inactive")
	}
	if !campaign.NoTimeLimit && campaign.CloseAt != nil && !campaign.CloseAt.After(time.Now().UTC()) {
		return apperr.Conflict("campaign is terminated")
	}
	if len(campaign.Executives) > 0 {
		email := strings.ToLower(strings.TrimSpace(operatorEmail))
		allowed := false
		for _, e := range campaign.Executives {
			if e == email {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperr.Forbidden("operator is not assigned to this campaign")
		}
	}
	return nil
}

// Release drops the lease on a deal so it becomes reclaimable immediately.
// Idempotent; releasing an expired or absent lease is not an error.
func (s *Service) Release(ctx context.Context, campaignKey string, dealID uuid.UUID, operatorID uuid.UUID) error {
	if err := s.deals.Release(ctx, campaignKey, dealID); err != nil {
		return err
	}
	s.logger.Info("lease released", "campaignKey", campaignKey, "dealId", dealID, "operatorId", operatorID)
	return nil
}

// RecordCallStart counts an attempt against a deal. Attempt counting is
// best-effort: a failed counter write is logged and swallowed so it never
// blocks the operator's call flow.
func (s *Service) RecordCallStart(ctx context.Context, campaignKey string, dealID uuid.UUID) {
	if err := s.deals.RecordCallStart(ctx, campaignKey, dealID); err != nil {
		s.logger.BestEffort("record call start", err)
	}
}

// OutcomeParams is an outcome submission for a leased deal.
type OutcomeParams struct {
	Outcome       string
	Skip          bool
	ForceDone     bool
	NextAttemptAt *time.Time
}

// SubmitOutcome applies an outcome to a deal: the gestion counter always
// moves, then the deal either finalizes or reschedules. The counter write is
// independent of the status transition; its failure is logged, never
// propagated.
func (s *Service) SubmitOutcome(ctx context.Context, campaignKey string, dealID uuid.UUID, operatorID uuid.UUID, params OutcomeParams) (*repository.Deal, error) {
	deal, err := s.deals.GetByID(ctx, campaignKey, dealID)
	if err != nil {
		return nil, err
	}
	if deal.Status != "pending" {
		return nil, apperr.Conflict("deal is already done")
	}

	if err := s.deals.IncrementGestions(ctx, dealID); err != nil {
		s.logger.BestEffort("increment gestions", err)
	}

	var outcome *string
	if params.Outcome != "" {
		o := params.Outcome
		outcome = &o
	}

	finalize, err := s.shouldFinalize(ctx, params)
	if err != nil {
		return nil, err
	}

	if finalize {
		if err := s.deals.Finalize(ctx, dealID, operatorID, outcome); err != nil {
			return nil, err
		}
		s.eventBus.Publish(ctx, events.DealFinalized{
			BaseEvent:   events.NewBaseEvent(),
			CampaignKey: campaignKey,
			DealID:      dealID,
			OperatorID:  operatorID,
			Outcome:     params.Outcome,
		})
		s.checkExhausted(ctx, campaignKey)
	} else {
		if err := s.deals.Reschedule(ctx, dealID, outcome, params.NextAttemptAt); err != nil {
			return nil, err
		}
	}

	return s.deals.GetByID(ctx, campaignKey, dealID)
}

// shouldFinalize decides between closing the deal and keeping it pending.
// Skip and force-done always close. A submitted outcome closes unless its
// definition is intermediate; an unknown key closes too, loudly, so a
// catalog gap degrades to finishing work instead of looping a dead lead.
// A failed catalog lookup is not an unknown key: closing is irreversible,
// so the error propagates and the operator retries.
func (s *Service) shouldFinalize(ctx context.Context, params OutcomeParams) (bool, error) {
	if params.Skip || params.ForceDone {
		return true, nil
	}
	if params.Outcome == "" {
		return false, nil
	}

	outcomeType, err := s.outcomes.ActiveOutcomeType(ctx, params.Outcome)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			s.logger.Warn("unknown outcome key, treating as final", "outcome", params.Outcome)
			return true, nil
		}
		return false, err
	}
	return outcomeType != outcomeTypeIntermediate, nil
}

// MarkManyDoneResult reports the per-row outcome of a bulk finalize.
type MarkManyDoneResult struct {
	Done    int
	Skipped int
}

// MarkManyDone finalizes a batch of deals best-effort: rows that are already
// done, unknown, or fail to write are counted and skipped without aborting
// the batch.
func (s *Service) MarkManyDone(ctx context.Context, campaignKey string, dealIDs []uuid.UUID, operatorID uuid.UUID) (*MarkManyDoneResult, error) {
	if len(dealIDs) == 0 {
		return nil, apperr.Validation("at least one deal id is required")
	}

	if _, err := s.campaigns.GetByKey(ctx, campaignKey); err != nil {
		return nil, err
	}

	result := &MarkManyDoneResult{}
	for _, id := range dealIDs {
		done, err := s.deals.MarkDone(ctx, campaignKey, id, operatorID)
		if err != nil {
			s.logger.BestEffort("bulk mark done", err)
			result.Skipped++
			continue
		}
		if done {
			result.Done++
		} else {
			result.Skipped++
		}
	}

	if result.Done > 0 {
		s.checkExhausted(ctx, campaignKey)
	}

	s.logger.Info("bulk mark done finished",
		"campaignKey", campaignKey, "done", result.Done, "skipped", result.Skipped)

	return result, nil
}

// UpdatePhoneParams is a manual phone correction for a deal.
type UpdatePhoneParams struct {
	Primary   string
	Secondary string
}

// UpdatePhone applies an operator-entered phone correction. Unlike the bulk
// extraction path, manually entered numbers go through full validation
// against the campaign country.
func (s *Service) UpdatePhone(ctx context.Context, campaignKey string, dealID uuid.UUID, params UpdatePhoneParams) (*repository.Deal, error) {
	campaign, err := s.campaigns.GetByKey(ctx, campaignKey)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(params.Primary) == "" {
		return nil, apperr.Validation("primary phone is required")
	}

	primary, ok := phone.NormalizeE164(params.Primary, campaign.Country)
	if !ok {
		return nil, apperr.Validation("primary phone is not valid for " + campaign.Country)
	}

	var secondary *string
	if strings.TrimSpace(params.Secondary) != "" {
		normalized, ok := phone.NormalizeE164(params.Secondary, campaign.Country)
		if !ok {
			return nil, apperr.Validation("secondary phone is not valid for " + campaign.Country)
		}
		secondary = &normalized
	}

	if err := s.deals.UpdatePhones(ctx, campaignKey, dealID, &primary, secondary, true); err != nil {
		return nil, err
	}

	return s.deals.GetByID(ctx, campaignKey, dealID)
}

// checkExhausted publishes the exhaustion event when a finalization drained
// the campaign's last pending deal. Effective termination stays derived at
// read time; this only drives bookkeeping.
func (s *Service) checkExhausted(ctx context.Context, campaignKey string) {
	pending, err := s.deals.CountPending(ctx, campaignKey)
	if err != nil {
		s.logger.BestEffort("count pending after finalize", err)
		return
	}
	if pending == 0 {
		s.logger.Info("campaign exhausted", "campaignKey", campaignKey)
		s.eventBus.Publish(ctx, events.CampaignExhausted{
			BaseEvent:   events.NewBaseEvent(),
			CampaignKey: campaignKey,
		})
	}
}

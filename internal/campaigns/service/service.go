// Package service contains the campaign business logic: key construction,
// lead loading with phone extraction, lifecycle derivation and explicit
// status transitions.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/repository"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/events"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/apperr"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/logger"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/phone"
)

// Service orchestrates campaign operations.
type Service struct {
	repo     *repository.Repository
	logger   *logger.Logger
	eventBus events.Bus
}

// New creates a campaign service.
func New(repo *repository.Repository, log *logger.Logger, bus events.Bus) *Service {
	return &Service{repo: repo, logger: log, eventBus: bus}
}

// LeadParams is one CRM deal to load into a campaign. PhoneFields carries the
// raw free-text phone columns exactly as they come from the CRM export.
type LeadParams struct {
	CRMDealID   string
	Title       string
	ContactName string
	PhoneFields []string
}

// CreateParams describes a new campaign and its initial lead set.
type CreateParams struct {
	Country     string
	Pipeline    string
	Stage       string
	Date        string
	Suffix      string
	CloseAt     *time.Time
	Timezone    string
	NoTimeLimit bool
	Executives  []string
	Leads       []LeadParams
}

// View is a campaign enriched with derived state.
type View struct {
	repository.Campaign
	EffectiveStatus string
	PendingDeals    int
}

// Create persists a campaign and bulk loads its deals. Phone candidates are
// extracted per lead using the campaign country; leads without a usable
// number are still loaded so availability reporting can account for them.
func (s *Service) Create(ctx context.Context, params CreateParams) (*View, error) {
	if err := validateCreate(params); err != nil {
		return nil, err
	}

	key := buildKey(params)
	now := time.Now().UTC()

	deals := make([]repository.DealInsert, 0, len(params.Leads))
	validLeads := 0
	for _, lead := range params.Leads {
		result := phone.Extract(lead.PhoneFields, params.Country)
		d := repository.DealInsert{
			CampaignKey:   key,
			CRMDealID:     lead.CRMDealID,
			Title:         lead.Title,
			ContactName:   lead.ContactName,
			HasValidPhone: result.HasValidPhone(),
		}
		if result.Primary != "" {
			primary := result.Primary
			d.PhonePrimary = &primary
		}
		if result.Secondary != "" {
			secondary := result.Secondary
			d.PhoneSecondary = &secondary
		}
		if d.HasValidPhone {
			validLeads++
		}
		deals = append(deals, d)
	}

	campaign := &repository.Campaign{
		Key:         key,
		Country:     strings.ToUpper(params.Country),
		Pipeline:    params.Pipeline,
		Stage:       params.Stage,
		Status:      StatusActive,
		CloseAt:     params.CloseAt,
		Timezone:    params.Timezone,
		NoTimeLimit: params.NoTimeLimit,
		Executives:  normalizeExecutives(params.Executives),
		TotalLeads:  len(deals),
		ValidLeads:  validLeads,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, campaign); err != nil {
		return nil, err
	}

	if err := s.repo.BulkInsertDeals(ctx, deals); err != nil {
		return nil, err
	}

	s.logger.Info("campaign created",
		"campaignKey", key,
		"totalLeads", campaign.TotalLeads,
		"validLeads", campaign.ValidLeads,
	)

	s.eventBus.Publish(ctx, events.CampaignCreated{
		BaseEvent:   events.NewBaseEvent(),
		CampaignKey: key,
		TotalLeads:  campaign.TotalLeads,
		ValidLeads:  campaign.ValidLeads,
	})

	return s.view(ctx, campaign)
}

// Get returns a campaign with its derived effective status.
func (s *Service) Get(ctx context.Context, key string) (*View, error) {
	campaign, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, campaign)
}

// List returns campaigns with derived status, optionally filtered by the
// persisted status.
func (s *Service) List(ctx context.Context, statusFilter string) ([]View, error) {
	if statusFilter != "" && statusFilter != StatusActive && statusFilter != StatusInactive {
		return nil, apperr.Validation("status filter must be active or inactive")
	}

	campaigns, err := s.repo.List(ctx, statusFilter)
	if err != nil {
		return nil, err
	}

	pendingCounts, err := s.repo.PendingCountsByCampaign(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	views := make([]View, 0, len(campaigns))
	for i := range campaigns {
		c := campaigns[i]
		pending := pendingCounts[c.Key]
		views = append(views, View{
			Campaign:        c,
			EffectiveStatus: EffectiveStatus(&c, pending, now),
			PendingDeals:    pending,
		})
	}

	return views, nil
}

// SetStatusParams carries an explicit status transition request.
type SetStatusParams struct {
	Status      string
	CloseAt     *time.Time
	NoTimeLimit *bool
}

// SetStatus writes an explicit active/inactive transition. Terminated is a
// derived state and cannot be assigned.
func (s *Service) SetStatus(ctx context.Context, key string, params SetStatusParams) (*View, error) {
	if params.Status != StatusActive && params.Status != StatusInactive {
		return nil, apperr.Validation("status must be active or inactive")
	}

	err := s.repo.UpdateStatus(ctx, key, repository.UpdateStatusParams{
		Status:      params.Status,
		CloseAt:     params.CloseAt,
		NoTimeLimit: params.NoTimeLimit,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("campaign status updated", "campaignKey", key, "status", params.Status)

	return s.Get(ctx, key)
}

// Delete removes a campaign and all of its deals.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}
	s.logger.Info("campaign deleted", "campaignKey", key)
	return nil
}

func (s *Service) view(ctx context.Context, c *repository.Campaign) (*View, error) {
	pending, err := s.repo.CountPendingDeals(ctx, c.Key)
	if err != nil {
		return nil, err
	}
	return &View{
		Campaign:        *c,
		EffectiveStatus: EffectiveStatus(c, pending, time.Now().UTC()),
		PendingDeals:    pending,
	}, nil
}

// buildKey assembles the campaign key from its identifying parts, e.g.
// "co-arriendos-contacto-20260901" or with a trailing suffix when several
// campaigns share a day.
func buildKey(params CreateParams) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(params.Country)),
		slugify(params.Pipeline),
		slugify(params.Stage),
		strings.TrimSpace(params.Date),
	}
	if suffix := slugify(params.Suffix); suffix != "" {
		parts = append(parts, suffix)
	}
	return strings.Join(parts, "-")
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}

func normalizeExecutives(execs []string) []string {
	out := make([]string, 0, len(execs))
	for _, e := range execs {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func validateCreate(params CreateParams) error {
	country := strings.TrimSpace(params.Country)
	if len(country) != 2 {
		return apperr.Validation("country must be a two-letter code")
	}
	if strings.TrimSpace(params.Pipeline) == "" {
		return apperr.Validation("pipeline is required")
	}
	if strings.TrimSpace(params.Stage) == "" {
		return apperr.Validation("stage is required")
	}
	if strings.TrimSpace(params.Date) == "" {
		return apperr.Validation("date is required")
	}
	if _, err := time.Parse("20060102", strings.TrimSpace(params.Date)); err != nil {
		return apperr.Validation(fmt.Sprintf("date must be YYYYMMDD: %s", params.Date))
	}
	if !params.NoTimeLimit && params.CloseAt == nil {
		return apperr.Validation("closeAt is required unless noTimeLimit is set")
	}
	if len(params.Leads) == 0 {
		return apperr.Validation("at least one lead is required")
	}
	for i, lead := range params.Leads {
		if strings.TrimSpace(lead.CRMDealID) == "" {
			return apperr.Validation(fmt.Sprintf("lead %d is missing its CRM deal id", i))
		}
	}
	return nil
}

// Package service manages the call outcome catalog consumed by the dialer
// state machine.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/outcomes/repository"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/apperr"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/logger"
)

// Outcome definition types.
const (
	TypeIntermediate = "intermediate"
	TypeFinal        = "final"
)

// Service orchestrates outcome catalog operations.
type Service struct {
	repo   *repository.Repository
	logger *logger.Logger
}

// New creates an outcomes service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// CreateParams describes a new outcome definition.
type CreateParams struct {
	Key          string
	Label        string
	Type         string
	MetricBucket string
	SortOrder    int
	Active       bool
}

// Create adds a definition to the catalog.
func (s *Service) Create(ctx context.Context, params CreateParams) (*repository.Definition, error) {
	key := strings.ToLower(strings.TrimSpace(params.Key))
	if key == "" {
		return nil, apperr.Validation("outcome key is required")
	}
	if params.Type != TypeIntermediate && params.Type != TypeFinal {
		return nil, apperr.Validation("outcome type must be intermediate or final")
	}

	now := time.Now().UTC()
	def := &repository.Definition{
		Key:          key,
		Label:        strings.TrimSpace(params.Label),
		Type:         params.Type,
		MetricBucket: params.MetricBucket,
		SortOrder:    params.SortOrder,
		Active:       params.Active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, def); err != nil {
		return nil, err
	}

	s.logger.Info("outcome definition created", "key", key, "type", params.Type)
	return def, nil
}

// List returns the full catalog in display order.
func (s *Service) List(ctx context.Context) ([]repository.Definition, error) {
	return s.repo.List(ctx)
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
func (s *Service) Update(ctx context.Context, key string, params UpdateParams) error {
	if params.Type != nil && *params.Type != TypeIntermediate && *params.Type != TypeFinal {
		return apperr.Validation("outcome type must be intermediate or final")
	}

	return s.repo.Update(ctx, key, repository.UpdateParams{
		Label:        params.Label,
		Type:         params.Type,
		MetricBucket: params.MetricBucket,
		SortOrder:    params.SortOrder,
		Active:       params.Active,
	})
}

// Delete removes a definition from the catalog.
func (s *Service) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

// ActiveOutcomeType resolves an outcome key to its type for state machine
// branching. Unknown or inactive keys yield a not-found error.
func (s *Service) ActiveOutcomeType(ctx context.Context, key string) (string, error) {
	def, err := s.repo.GetActiveByKey(ctx, key)
	if err != nil {
		return "", err
	}
	return def.Type, nil
}

// Package transport defines the outcome catalog HTTP shapes.
package transport

import (
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/outcomes/repository"
)

// CreateOutcomeRequest is the request body for creating a definition.
type CreateOutcomeRequest struct {
	Key          string `json:"key" validate:"required,min=1,max=100"`
	Label        string `json:"label" validate:"required,min=1,max=200"`
	Type         string `json:"type" validate:"required,oneof=intermediate final"`
	MetricBucket string `json:"metricBucket,omitempty" validate:"max=100"`
	SortOrder    int    `json:"sortOrder" validate:"min=0"`
	Active       bool   `json:"active"`
}

// UpdateOutcomeRequest is the request body for a partial update.
type UpdateOutcomeRequest struct {
	Label        *string `json:"label,omitempty" validate:"omitempty,min=1,max=200"`
	Type         *string `json:"type,omitempty" validate:"omitempty,oneof=intermediate final"`
	MetricBucket *string `json:"metricBucket,omitempty" validate:"omitempty,max=100"`
	SortOrder    *int    `json:"sortOrder,omitempty" validate:"omitempty,min=0"`
	Active       *bool   `json:"active,omitempty"`
}

// OutcomeResponse is the response body for a definition.
type OutcomeResponse struct {
	Key          string    `json:"key"`
	Label        string    `json:"label"`
	Type         string    `json:"type"`
	MetricBucket string    `json:"metricBucket,omitempty"`
	SortOrder    int       `json:"sortOrder"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListOutcomesResponse wraps the catalog.
type ListOutcomesResponse struct {
	Items []OutcomeResponse `json:"items"`
	Total int               `json:"total"`
}

// FromDefinition maps a repository definition to the response shape.
func FromDefinition(d *repository.Definition) OutcomeResponse {
	return OutcomeResponse{
		Key:          d.Key,
		Label:        d.Label,
		Type:         d.Type,
		MetricBucket: d.MetricBucket,
		SortOrder:    d.SortOrder,
		Active:       d.Active,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

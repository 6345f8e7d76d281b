// Package transport defines the campaign HTTP request and response shapes.
package transport

import (
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/service"
)

// LeadInput is one CRM deal row as submitted at campaign creation.
type LeadInput struct {
	CRMDealID   string   `json:"crmDealId" validate:"required,min=1,max=64"`
	Title       string   `json:"title" validate:"max=300"`
	ContactName string   `json:"contactName" validate:"max=200"`
	PhoneFields []string `json:"phoneFields"`
}

// CreateCampaignRequest is the request body for creating a campaign.
type CreateCampaignRequest struct {
	Country     string      `json:"country" validate:"required,len=2,alpha"`
	Pipeline    string      `json:"pipeline" validate:"required,min=1,max=100"`
	Stage       string      `json:"stage" validate:"required,min=1,max=100"`
	Date        string      `json:"date" validate:"required,len=8,numeric"`
	Suffix      string      `json:"suffix,omitempty" validate:"max=30"`
	CloseAt     *time.Time  `json:"closeAt,omitempty"`
	Timezone    string      `json:"timezone,omitempty" validate:"max=64"`
	NoTimeLimit bool        `json:"noTimeLimit"`
	Executives  []string    `json:"executives,omitempty" validate:"dive,email"`
	Leads       []LeadInput `json:"leads" validate:"required,min=1,dive"`
}

// UpdateStatusRequest is the request body for an explicit status transition.
type UpdateStatusRequest struct {
	Status      string     `json:"status" validate:"required,oneof=active inactive"`
	CloseAt     *time.Time `json:"closeAt,omitempty"`
	NoTimeLimit *bool      `json:"noTimeLimit,omitempty"`
}

// ListCampaignsRequest is the query parameters for listing campaigns.
type ListCampaignsRequest struct {
	Status string `form:"status" validate:"omitempty,oneof=active inactive"`
}

// CampaignResponse is the response body for a campaign.
type CampaignResponse struct {
	Key             string     `json:"key"`
	Country         string     `json:"country"`
	Pipeline        string     `json:"pipeline"`
	Stage           string     `json:"stage"`
	Status          string     `json:"status"`
	EffectiveStatus string     `json:"effectiveStatus"`
	CloseAt         *time.Time `json:"closeAt,omitempty"`
	Timezone        string     `json:"timezone,omitempty"`
	NoTimeLimit     bool       `json:"noTimeLimit"`
	Executives      []string   `json:"executives,omitempty"`
	TotalLeads      int        `json:"totalLeads"`
	ValidLeads      int        `json:"validLeads"`
	PendingDeals    int        `json:"pendingDeals"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ListCampaignsResponse wraps the campaign collection.
type ListCampaignsResponse struct {
	Items []CampaignResponse `json:"items"`
	Total int                `json:"total"`
}

// FromView maps a service view to the response shape.
func FromView(v *service.View) CampaignResponse {
	return CampaignResponse{
		Key:             v.Key,
		Country:         v.Country,
		Pipeline:        v.Pipeline,
		Stage:           v.Stage,
		Status:          v.Status,
		EffectiveStatus: v.EffectiveStatus,
		CloseAt:         v.CloseAt,
		Timezone:        v.Timezone,
		NoTimeLimit:     v.NoTimeLimit,
		Executives:      v.Executives,
		TotalLeads:      v.TotalLeads,
		ValidLeads:      v.ValidLeads,
		PendingDeals:    v.PendingDeals,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

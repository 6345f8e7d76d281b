// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Campaign Domain Events
// =============================================================================

// CampaignCreated is published after a campaign and its deals are persisted.
type CampaignCreated struct {
	BaseEvent
	CampaignKey string `json:"campaignKey"`
	TotalLeads  int    `json:"totalLeads"`
	ValidLeads  int    `json:"validLeads"`
}

func (e CampaignCreated) EventName() string { return "campaigns.created" }

// CampaignExhausted is published when the last pending deal of a campaign is
// finalized. Effective termination is derived at read time; this event only
// drives bookkeeping (counter refresh, logging).
type CampaignExhausted struct {
	BaseEvent
	CampaignKey string `json:"campaignKey"`
}

func (e CampaignExhausted) EventName() string { return "campaigns.exhausted" }

// =============================================================================
// Dialer Domain Events
// =============================================================================

// DealFinalized is published when an outcome submission closes a deal.
type DealFinalized struct {
	BaseEvent
	CampaignKey string    `json:"campaignKey"`
	DealID      uuid.UUID `json:"dealId"`
	OperatorID  uuid.UUID `json:"operatorId"`
	Outcome     string    `json:"outcome,omitempty"`
}

func (e DealFinalized) EventName() string { return "dialer.deal.finalized" }

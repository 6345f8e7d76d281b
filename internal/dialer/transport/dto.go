// Package transport defines the dialer HTTP request and response shapes.
package transport

import (
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer/repository"

	"github.com/google/uuid"
)

// OutcomeRequest is the request body for submitting a call outcome.
type OutcomeRequest struct {
	Outcome       string     `json:"outcome,omitempty" validate:"max=100"`
	Skip          bool       `json:"skip"`
	ForceDone     bool       `json:"forceDone"`
	NextAttemptAt *time.Time `json:"nextAttemptAt,omitempty"`
}

// MarkManyDoneRequest is the request body for bulk finalization.
type MarkManyDoneRequest struct {
	DealIDs []uuid.UUID `json:"dealIds" validate:"required,min=1,max=500"`
}

// MarkManyDoneResponse reports how the batch went.
type MarkManyDoneResponse struct {
	Done    int `json:"done"`
	Skipped int `json:"skipped"`
}

// UpdatePhoneRequest is the request body for a manual phone correction.
type UpdatePhoneRequest struct {
	Primary   string `json:"primary" validate:"required,min=7,max=20"`
	Secondary string `json:"secondary,omitempty" validate:"omitempty,min=7,max=20"`
}

// DealResponse is the leased-deal snapshot returned to operators.
type DealResponse struct {
	ID             uuid.UUID  `json:"id"`
	CampaignKey    string     `json:"campaignKey"`
	CRMDealID      string     `json:"crmDealId"`
	Title          string     `json:"title"`
	ContactName    string     `json:"contactName"`
	PhonePrimary   *string    `json:"phonePrimary,omitempty"`
	PhoneSecondary *string    `json:"phoneSecondary,omitempty"`
	HasValidPhone  bool       `json:"hasValidPhone"`
	Status         string     `json:"status"`
	Attempts       int        `json:"attempts"`
	Gestions       int        `json:"gestions"`
	LastAttemptAt  *time.Time `json:"lastAttemptAt,omitempty"`
	NextAttemptAt  *time.Time `json:"nextAttemptAt,omitempty"`
	LockExpiresAt  *time.Time `json:"lockExpiresAt,omitempty"`
	AssignedTo     *uuid.UUID `json:"assignedTo,omitempty"`
	LastOutcome    *string    `json:"lastOutcome,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// FromDeal maps a repository deal to the response shape.
func FromDeal(d *repository.Deal) DealResponse {
	return DealResponse{
		ID:             d.ID,
		CampaignKey:    d.CampaignKey,
		CRMDealID:      d.CRMDealID,
		Title:          d.Title,
		ContactName:    d.ContactName,
		PhonePrimary:   d.PhonePrimary,
		PhoneSecondary: d.PhoneSecondary,
		HasValidPhone:  d.HasValidPhone,
		Status:         d.Status,
		Attempts:       d.Attempts,
		Gestions:       d.Gestions,
		LastAttemptAt:  d.LastAttemptAt,
		NextAttemptAt:  d.NextAttemptAt,
		LockExpiresAt:  d.LockExpiresAt,
		AssignedTo:     d.AssignedTo,
		LastOutcome:    d.LastOutcome,
		CompletedAt:    d.CompletedAt,
	}
}

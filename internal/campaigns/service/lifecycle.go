package service

import (
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/repository"
)

// Campaign lifecycle states. Active and inactive are persisted; terminated is
// derived at read time and never written back.
const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusTerminated = "terminated"
)

// EffectiveStatus derives the observable campaign state. An active campaign
// reads as terminated once its close deadline passes (unless it runs without
// a time limit) or once no pending deals remain. Inactive always wins: it is
// an explicit operator decision and never derived.
func EffectiveStatus(c *repository.Campaign, pendingDeals int, now time.Time) string {
	if c.Status == StatusInactive {
		return StatusInactive
	}

	if !c.NoTimeLimit && c.CloseAt != nil && !c.CloseAt.After(now) {
		return StatusTerminated
	}

	if pendingDeals == 0 {
		return StatusTerminated
	}

	return StatusActive
}

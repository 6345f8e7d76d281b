package scheduler

import (
	"context"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/events"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/logger"
)

// RegisterEventHandlers wires campaign lifecycle events to counter refresh
// jobs so the denormalized lead counters follow the deal table without
// synchronous writes on the hot path.
func RegisterEventHandlers(bus events.Bus, client CounterRefresher, log *logger.Logger) {
	refresh := func(ctx context.Context, campaignKey string) error {
		if err := client.EnqueueCounterRefresh(ctx, campaignKey); err != nil {
			log.BestEffort("enqueue counter refresh", err)
		}
		return nil
	}

	bus.Subscribe(events.CampaignCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		if evt, ok := e.(events.CampaignCreated); ok {
			return refresh(ctx, evt.CampaignKey)
		}
		return nil
	}))

	bus.Subscribe(events.DealFinalized{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		if evt, ok := e.(events.DealFinalized); ok {
			return refresh(ctx, evt.CampaignKey)
		}
		return nil
	}))

	bus.Subscribe(events.CampaignExhausted{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		if evt, ok := e.(events.CampaignExhausted); ok {
			return refresh(ctx, evt.CampaignKey)
		}
		return nil
	}))
}

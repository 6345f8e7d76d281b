package service

import (
	"testing"
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/repository"
)

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		status  string
		closeAt *time.Time
		noLimit bool
		pending int
		want    string
	}{
		{"active with pending work and open deadline", StatusActive, &future, false, 5, StatusActive},
		{"deadline passed", StatusActive, &past, false, 5, StatusTerminated},
		{"deadline exactly now", StatusActive, &now, false, 5, StatusTerminated},
		{"deadline passed but no time limit", StatusActive, &past, true, 5, StatusActive},
		{"no pending deals", StatusActive, &future, false, 0, StatusTerminated},
		{"no pending deals without time limit", StatusActive, nil, true, 0, StatusTerminated},
		{"inactive wins over deadline", StatusInactive, &past, false, 5, StatusInactive},
		{"inactive wins over exhaustion", StatusInactive, &future, false, 0, StatusInactive},
		{"no close date behaves as open", StatusActive, nil, false, 3, StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &repository.Campaign{
				Status:      tt.status,
				CloseAt:     tt.closeAt,
				NoTimeLimit: tt.noLimit,
			}
			got := EffectiveStatus(c, tt.pending, now)
			if got != tt.want {
				t.Errorf("EffectiveStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name   string
		params CreateParams
		want   string
	}{
		{
			name:   "basic key",
			params: CreateParams{Country: "CO", Pipeline: "Arriendos", Stage: "Contacto", Date: "20260901"},
			want:   "co-arriendos-contacto-20260901",
		},
		{
			name:   "with suffix",
			params: CreateParams{Country: "mx", Pipeline: "ventas", Stage: "primer contacto", Date: "20260901", Suffix: "B"},
			want:   "mx-ventas-primer-contacto-20260901-b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildKey(tt.params); got != tt.want {
				t.Errorf("buildKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateCreate(t *testing.T) {
	closeAt := time.Now().Add(24 * time.Hour)
	valid := CreateParams{
		Country:  "CO",
		Pipeline: "arriendos",
		Stage:    "contacto",
		Date:     "20260901",
		CloseAt:  &closeAt,
		Leads:    []LeadParams{{CRMDealID: "123"}},
	}

	if err := validateCreate(valid); err != nil {
		t.Fatalf("validateCreate(valid) = %v, want nil", err)
	}

	mutations := []struct {
		name   string
		mutate func(p *CreateParams)
	}{
		{"bad country", func(p *CreateParams) { p.Country = "COL" }},
		{"missing pipeline", func(p *CreateParams) { p.Pipeline = " " }},
		{"missing stage", func(p *CreateParams) { p.Stage = "" }},
		{"bad date", func(p *CreateParams) { p.Date = "2026-09-01" }},
		{"no close date without no-limit flag", func(p *CreateParams) { p.CloseAt = nil }},
		{"no leads", func(p *CreateParams) { p.Leads = nil }},
		{"lead without deal id", func(p *CreateParams) { p.Leads = []LeadParams{{CRMDealID: ""}} }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := validateCreate(p); err == nil {
				t.Errorf("validateCreate() = nil, want error")
			}
		})
	}

	t.Run("no close date allowed with no-limit flag", func(t *testing.T) {
		p := valid
		p.CloseAt = nil
		p.NoTimeLimit = true
		if err := validateCreate(p); err != nil {
			t.Errorf("validateCreate() = %v, want nil", err)
		}
	})
}

// Package campaigns provides the campaign domain module.
package campaigns

import (
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/handler"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/repository"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/service"
	apphttp "github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/http"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/events"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/logger"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the campaign domain module
type Module struct {
	handler    *handler.Handler
	Service    *service.Service
	Repository *repository.Repository
}

// NewModule creates a new campaigns module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger, bus events.Bus) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log, bus)
	h := handler.New(svc, val)

	return &Module{
		handler:    h,
		Service:    svc,
		Repository: repo,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "campaigns"
}

// RegisterRoutes registers the module's routes under /api/v1/campaigns
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	campaigns := ctx.Protected.Group("/campaigns")
	m.handler.RegisterRoutes(campaigns)
}

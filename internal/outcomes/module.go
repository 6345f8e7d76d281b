// Package outcomes provides the call outcome catalog module.
package outcomes

import (
	apphttp "github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/http"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/outcomes/handler"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/outcomes/repository"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/outcomes/service"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/logger"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the outcomes domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new outcomes module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "outcomes"
}

// RegisterRoutes registers the module's routes under /api/v1/outcomes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	outcomes := ctx.Protected.Group("/outcomes")
	m.handler.RegisterRoutes(outcomes)
}

// Package dialer provides the work distribution domain module: lease claims,
// outcome submission and availability diagnostics.
package dialer

import (
	camprepo "github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/repository"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer/cache"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer/handler"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer/repository"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer/service"
	apphttp "github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/http"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/config"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/events"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/logger"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Config combines the config surfaces the dialer module consumes.
type Config interface {
	config.DialerConfig
	config.CacheConfig
}

// Module represents the dialer domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new dialer module with all dependencies wired.
// redisClient may be nil; availability snapshots are then always recomputed.
func NewModule(
	pool *pgxpool.Pool,
	campaigns *camprepo.Repository,
	outcomes service.OutcomeCatalog,
	redisClient *redis.Client,
	cfg Config,
	val *validator.Validator,
	log *logger.Logger,
	bus events.Bus,
) *Module {
	repo := repository.New(pool)

	var snapshots service.SnapshotCache
	if redisClient != nil {
		snapshots = cache.New(redisClient, cfg.GetAvailabilityCacheTTL(), log)
	}

	svc := service.New(repo, campaigns, outcomes, snapshots, cfg, log, bus)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "dialer"
}

// RegisterRoutes registers the module's routes under /api/v1/campaigns
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	campaigns := ctx.Protected.Group("/campaigns")
	m.handler.RegisterRoutes(campaigns)
}

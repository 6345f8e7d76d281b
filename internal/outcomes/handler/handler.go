package handler

import (
	"net/http"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/outcomes/service"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/outcomes/transport"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/httpkit"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for outcome definitions
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new outcomes handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the outcome catalog routes. Catalog mutations are
// restricted to admins; every operator can read the catalog.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)

	admin := rg.Group("")
	admin.Use(httpkit.RequireRole("admin"))
	admin.POST("", h.Create)
	admin.PATCH("/:key", h.Update)
	admin.DELETE("/:key", h.Delete)
}

// List handles GET /api/v1/outcomes
func (h *Handler) List(c *gin.Context) {
	defs, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.OutcomeResponse, 0, len(defs))
	for i := range defs {
		items = append(items, transport.FromDefinition(&defs[i]))
	}

	httpkit.OK(c, transport.ListOutcomesResponse{Items: items, Total: len(items)})
}

// Create handles POST /api/v1/outcomes
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	def, err := h.svc.Create(c.Request.Context(), service.CreateParams{
		Key:          req.Key,
		Label:        req.Label,
		Type:         req.Type,
		MetricBucket: req.MetricBucket,
		SortOrder:    req.SortOrder,
		Active:       req.Active,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.FromDefinition(def))
}

// Update handles PATCH /api/v1/outcomes/:key
func (h *Handler) Update(c *gin.Context) {
	var req transport.UpdateOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	err := h.svc.Update(c.Request.Context(), c.Param("key"), service.UpdateParams{
		Label:        req.Label,
		Type:         req.Type,
		MetricBucket: req.MetricBucket,
		SortOrder:    req.SortOrder,
		Active:       req.Active,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.NoContent(c)
}

// Delete handles DELETE /api/v1/outcomes/:key
func (h *Handler) Delete(c *gin.Context) {
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), c.Param("key"))) {
		return
	}
	httpkit.NoContent(c)
}

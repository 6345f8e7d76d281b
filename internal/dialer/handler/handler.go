package handler

import (
	"net/http"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer/service"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer/transport"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/httpkit"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidDealID    = "deal id must be a valid UUID"
)

// Handler handles HTTP requests for the dialer
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new dialer handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the dialer routes under the campaigns group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:key/claim", h.Claim)
	rg.GET("/:key/availability", h.Availability)
	rg.POST("/:key/deals/mark-done", h.MarkManyDone)
	rg.POST("/:key/deals/:id/release", h.Release)
	rg.POST("/:key/deals/:id/call-start", h.CallStart)
	rg.POST("/:key/deals/:id/outcome", h.Outcome)
	rg.PATCH("/:key/deals/:id/phone", h.UpdatePhone)
}

func dealID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidDealID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}

// Claim handles POST /api/v1/campaigns/:key/claim
func (h *Handler) Claim(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	deal, err := h.svc.Claim(c.Request.Context(), c.Param("key"), identity.OperatorID(), identity.Email())
	if httpkit.HandleError(c, err) {
		return
	}
	if deal == nil {
		httpkit.NoContent(c)
		return
	}

	httpkit.OK(c, transport.FromDeal(deal))
}

// Release handles POST /api/v1/campaigns/:key/deals/:id/release
func (h *Handler) Release(c *gin.Context) {
	id, ok := dealID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	err := h.svc.Release(c.Request.Context(), c.Param("key"), id, identity.OperatorID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.NoContent(c)
}

// CallStart handles POST /api/v1/campaigns/:key/deals/:id/call-start
func (h *Handler) CallStart(c *gin.Context) {
	id, ok := dealID(c)
	if !ok {
		return
	}

	h.svc.RecordCallStart(c.Request.Context(), c.Param("key"), id)
	httpkit.NoContent(c)
}

// Outcome handles POST /api/v1/campaigns/:key/deals/:id/outcome
func (h *Handler) Outcome(c *gin.Context) {
	id, ok := dealID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.OutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	deal, err := h.svc.SubmitOutcome(c.Request.Context(), c.Param("key"), id, identity.OperatorID(), service.OutcomeParams{
		Outcome:       req.Outcome,
		Skip:          req.Skip,
		ForceDone:     req.ForceDone,
		NextAttemptAt: req.NextAttemptAt,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromDeal(deal))
}

// MarkManyDone handles POST /api/v1/campaigns/:key/deals/mark-done
func (h *Handler) MarkManyDone(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.MarkManyDoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.MarkManyDone(c.Request.Context(), c.Param("key"), req.DealIDs, identity.OperatorID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.MarkManyDoneResponse{Done: result.Done, Skipped: result.Skipped})
}

// UpdatePhone handles PATCH /api/v1/campaigns/:key/deals/:id/phone
func (h *Handler) UpdatePhone(c *gin.Context) {
	id, ok := dealID(c)
	if !ok {
		return
	}

	var req transport.UpdatePhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	deal, err := h.svc.UpdatePhone(c.Request.Context(), c.Param("key"), id, service.UpdatePhoneParams{
		Primary:   req.Primary,
		Secondary: req.Secondary,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromDeal(deal))
}

// Availability handles GET /api/v1/campaigns/:key/availability
func (h *Handler) Availability(c *gin.Context) {
	view, err := h.svc.Availability(c.Request.Context(), c.Param("key"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

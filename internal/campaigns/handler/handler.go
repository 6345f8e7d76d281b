package handler

import (
	"net/http"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/service"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/campaigns/transport"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/httpkit"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for campaigns
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new campaigns handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the campaign routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:key", h.Get)
	rg.PATCH("/:key/status", h.UpdateStatus)
	rg.DELETE("/:key", h.Delete)
}

// Create handles POST /api/v1/campaigns
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	leads := make([]service.LeadParams, 0, len(req.Leads))
	for _, l := range req.Leads {
		leads = append(leads, service.LeadParams{
			CRMDealID:   l.CRMDealID,
			Title:       l.Title,
			ContactName: l.ContactName,
			PhoneFields: l.PhoneFields,
		})
	}

	view, err := h.svc.Create(c.Request.Context(), service.CreateParams{
		Country:     req.Country,
		Pipeline:    req.Pipeline,
		Stage:       req.Stage,
		Date:        req.Date,
		Suffix:      req.Suffix,
		CloseAt:     req.CloseAt,
		Timezone:    req.Timezone,
		NoTimeLimit: req.NoTimeLimit,
		Executives:  req.Executives,
		Leads:       leads,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.FromView(view))
}

// List handles GET /api/v1/campaigns
func (h *Handler) List(c *gin.Context) {
	var req transport.ListCampaignsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	views, err := h.svc.List(c.Request.Context(), req.Status)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.CampaignResponse, 0, len(views))
	for i := range views {
		items = append(items, transport.FromView(&views[i]))
	}

	httpkit.OK(c, transport.ListCampaignsResponse{Items: items, Total: len(items)})
}

// Get handles GET /api/v1/campaigns/:key
func (h *Handler) Get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("key"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromView(view))
}

// UpdateStatus handles PATCH /api/v1/campaigns/:key/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	view, err := h.svc.SetStatus(c.Request.Context(), c.Param("key"), service.SetStatusParams{
		Status:      req.Status,
		CloseAt:     req.CloseAt,
		NoTimeLimit: req.NoTimeLimit,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromView(view))
}

// Delete handles DELETE /api/v1/campaigns/:key
func (h *Handler) Delete(c *gin.Context) {
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), c.Param("key"))) {
		return
	}
	httpkit.NoContent(c)
}

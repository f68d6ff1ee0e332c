package consultations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"consult-backend/internal/shared/server/middleware"
	"consult-backend/internal/shared/server/respond"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Handler wires HTTP handlers to the consultations service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches consultation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/recommendations/preview", h.preview)
	rg.POST("/consultations", h.createConsultation)
	rg.GET("/consultations", h.listConsultations)
	rg.GET("/consultations/:id", h.getConsultation)
}

func (h *Handler) preview(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	c.Set(middleware.BudgetRangeKey, req.BudgetRangeID)

	res, err := h.Svc.Preview(c.Request.Context(), req.toInputs())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build recommendations", nil)
		return
	}
	setCacheStatus(c, res.CacheStatus)
	respond.OK(c, res.Output)
}

func (h *Handler) createConsultation(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}
	c.Set(middleware.BudgetRangeKey, req.BudgetRangeID)

	consultation, res, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), middleware.IsGuest(c), req.toInputs())
	if err != nil {
		switch {
		case errors.Is(err, ErrOwnerRequired):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create consultation", nil)
		}
		return
	}
	c.Set(middleware.ConsultationIDKey, consultation.ID)
	setCacheStatus(c, res.CacheStatus)
	respond.Created(c, consultation)
}

func (h *Handler) getConsultation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "consultation id is required", nil)
		return
	}
	c.Set(middleware.ConsultationIDKey, id)

	consultation, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "consultation not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch consultation", nil)
		}
		return
	}
	respond.OK(c, consultation)
}

func (h *Handler) listConsultations(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
		return
	}

	limit := queryInt(c, "limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list consultations", nil)
		return
	}

	resp := make([]gin.H, 0, len(items))
	for _, item := range items {
		resp = append(resp, gin.H{
			"id":              item.ID,
			"createdAt":       item.CreatedAt,
			"catalogVersion":  item.CatalogVersion,
			"budgetRangeId":   item.BudgetRangeID,
			"totalPriceKRW":   item.TotalPriceKRW,
			"recommendations": len(item.Output.Recommendations),
		})
	}
	respond.OK(c, gin.H{"items": resp, "limit": limit, "offset": offset})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func setCacheStatus(c *gin.Context, status string) {
	c.Set(middleware.CacheStatusKey, status)
	c.Header("X-Cache", status)
}

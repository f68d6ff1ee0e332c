package catalogapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"consult-backend/internal/matching"
	"consult-backend/internal/shared/server/respond"
)

// Handler serves the read-only treatment catalog.
type Handler struct {
	Catalog *matching.Catalog
	Rates   matching.RateSource
}

// NewHandler constructs a Handler.
func NewHandler(catalog *matching.Catalog, rates matching.RateSource) *Handler {
	return &Handler{Catalog: catalog, Rates: rates}
}

type treatmentView struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Tier     int      `json:"tier"`
	Category string   `json:"category"`
	Areas    []string `json:"areas"`
	PriceKRW int64    `json:"priceKRW"`
	PriceUSD int64    `json:"priceUSD"`
}

// RegisterRoutes attaches catalog routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/catalog", h.getCatalog)
	rg.GET("/catalog/treatments/:key", h.getTreatment)
}

func (h *Handler) getCatalog(c *gin.Context) {
	treatments := h.Catalog.Treatments()
	views := make([]treatmentView, 0, len(treatments))
	for _, t := range treatments {
		views = append(views, h.view(t))
	}
	respond.OK(c, gin.H{
		"version":     h.Catalog.Version(),
		"treatments":  views,
		"budgetTiers": h.Catalog.BudgetTiers(),
	})
}

func (h *Handler) getTreatment(c *gin.Context) {
	t, ok := h.Catalog.Lookup(c.Param("key"))
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "treatment not found", nil)
		return
	}
	respond.OK(c, h.view(t))
}

func (h *Handler) view(t matching.Treatment) treatmentView {
	areas := t.Areas
	if areas == nil {
		areas = []string{}
	}
	return treatmentView{
		Key:      t.Key,
		Label:    t.Label,
		Tier:     int(t.Tier),
		Category: t.Category,
		Areas:    areas,
		PriceKRW: t.PriceKRW,
		PriceUSD: matching.ConvertKRWToUSD(t.PriceKRW, h.Rates.KRWToUSD()),
	}
}

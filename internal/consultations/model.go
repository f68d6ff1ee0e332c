package consultations

import (
	"time"

	"consult-backend/internal/matching"
)

// Consultation is one persisted questionnaire run.
type Consultation struct {
	ID             string                        `json:"id"`
	OwnerID        string                        `json:"ownerId"`
	IsGuest        bool                          `json:"isGuest"`
	CatalogVersion string                        `json:"catalogVersion"`
	BudgetRangeID  string                        `json:"budgetRangeId"`
	TotalPriceKRW  int64                         `json:"totalPriceKRW"`
	Inputs         matching.RecommendInputs      `json:"inputs"`
	Output         matching.RecommendationOutput `json:"output"`
	CreatedAt      time.Time                     `json:"createdAt"`
}

package consultations

import (
	"strings"

	"consult-backend/internal/matching"
)

// concernBody is one selected skin concern.
type concernBody struct {
	ID   string `json:"id" binding:"required,max=64"`
	Tier int    `json:"tier" binding:"min=0,max=3"`
}

// recommendRequest is the questionnaire payload accepted by the preview and
// create endpoints.
type recommendRequest struct {
	SkinTypeID        string        `json:"skinTypeId" binding:"max=64"`
	AgeGroup          string        `json:"ageGroup" binding:"max=32"`
	Gender            string        `json:"gender" binding:"max=32"`
	SkinConcerns      []concernBody `json:"skinConcerns" binding:"max=20,dive"`
	TreatmentGoals    []string      `json:"treatmentGoals" binding:"max=20,dive,max=64"`
	TreatmentAreas    []string      `json:"treatmentAreas" binding:"max=10,dive,max=32"`
	BudgetRangeID     string        `json:"budgetRangeId" binding:"required,max=64"`
	PriorityID        string        `json:"priorityId" binding:"max=64"`
	PastTreatments    []string      `json:"pastTreatments" binding:"max=20,dive,max=64"`
	MedicalConditions []string      `json:"medicalConditions" binding:"max=20,dive,max=64"`
}

func (r recommendRequest) toInputs() matching.RecommendInputs {
	concerns := make([]matching.Concern, 0, len(r.SkinConcerns))
	for _, c := range r.SkinConcerns {
		concerns = append(concerns, matching.Concern{
			ID:   strings.TrimSpace(c.ID),
			Tier: matching.Tier(c.Tier),
		})
	}
	return matching.RecommendInputs{
		SkinTypeID:        strings.TrimSpace(r.SkinTypeID),
		AgeGroup:          strings.TrimSpace(r.AgeGroup),
		Gender:            strings.TrimSpace(r.Gender),
		SkinConcerns:      concerns,
		TreatmentGoals:    trimAll(r.TreatmentGoals),
		TreatmentAreas:    trimAll(r.TreatmentAreas),
		BudgetRangeID:     strings.TrimSpace(r.BudgetRangeID),
		PriorityID:        strings.TrimSpace(r.PriorityID),
		PastTreatments:    trimAll(r.PastTreatments),
		MedicalConditions: trimAll(r.MedicalConditions),
	}
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

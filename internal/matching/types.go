package matching

// Tier is the coarse treatment category.
type Tier int

const (
	TierUnknown    Tier = 0
	TierSkin       Tier = 1
	TierAntiAging  Tier = 2
	TierContouring Tier = 3
)

// Importance is an ordinal priority where 1 is the highest. The zero value is
// not a valid importance; use NewImportance or the named constants.
type Importance int

const (
	ImportanceHigh   Importance = 1
	ImportanceMedium Importance = 2
	ImportanceLow    Importance = 3
)

// NewImportance clamps v into the valid 1..3 range.
func NewImportance(v int) Importance {
	switch {
	case v < int(ImportanceHigh):
		return ImportanceHigh
	case v > int(ImportanceLow):
		return ImportanceLow
	default:
		return Importance(v)
	}
}

// Promote returns the next higher importance, stopping at ImportanceHigh.
func (i Importance) Promote() Importance {
	return NewImportance(int(i) - 1)
}

// Demote returns the next lower importance, stopping at ImportanceLow.
func (i Importance) Demote() Importance {
	return NewImportance(int(i) + 1)
}

// Candidate is a treatment under consideration.
type Candidate struct {
	Key        string     `json:"key"`
	Tier       Tier       `json:"tier"`
	Importance Importance `json:"importance"`
	Why        string     `json:"why"`
}

// ReasonKind classifies why a treatment was excluded or substituted.
type ReasonKind string

const (
	ReasonAreaMismatch            ReasonKind = "area_mismatch"
	ReasonPriorityMismatch        ReasonKind = "priority_mismatch"
	ReasonBudgetExceeded          ReasonKind = "budget_exceeded"
	ReasonRecencyWindow           ReasonKind = "recency_window"
	ReasonMedicalContraindication ReasonKind = "medical_contraindication"
)

// ExcludedItem records a permanent removal from the candidate set.
type ExcludedItem struct {
	Key    string     `json:"key"`
	Label  string     `json:"label"`
	Reason string     `json:"reason"`
	Kind   ReasonKind `json:"kind"`
}

// Substitution records one candidate replaced by another.
type Substitution struct {
	FromKey string     `json:"fromKey"`
	ToKey   string     `json:"toKey"`
	Reason  string     `json:"reason"`
	Kind    ReasonKind `json:"kind"`
}

// Concern is a selected skin concern.
type Concern struct {
	ID   string `json:"id"`
	Tier Tier   `json:"tier"`
}

// RecommendInputs is the questionnaire payload the engine consumes.
type RecommendInputs struct {
	SkinTypeID        string    `json:"skinTypeId"`
	AgeGroup          string    `json:"ageGroup"`
	Gender            string    `json:"gender"`
	SkinConcerns      []Concern `json:"skinConcerns"`
	TreatmentGoals    []string  `json:"treatmentGoals"`
	TreatmentAreas    []string  `json:"treatmentAreas"`
	BudgetRangeID     string    `json:"budgetRangeId"`
	PriorityID        string    `json:"priorityId"`
	PastTreatments    []string  `json:"pastTreatments"`
	MedicalConditions []string  `json:"medicalConditions"`
}

// RecommendedTreatment is one entry of the final recommendation list.
type RecommendedTreatment struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Tier     Tier   `json:"tier"`
	PriceKRW int64  `json:"priceKRW"`
	Why      string `json:"why"`
}

// UpgradeSuggestion hints at what a different budget or priority would unlock.
type UpgradeSuggestion struct {
	Kind                   string `json:"kind"`
	Key                    string `json:"key"`
	Label                  string `json:"label"`
	SuggestedBudgetRangeID string `json:"suggestedBudgetRangeId,omitempty"`
	AdditionalKRW          int64  `json:"additionalKRW,omitempty"`
	Message                string `json:"message"`
}

const (
	UpgradeKindBudget   = "budget"
	UpgradeKindPriority = "priority"
)

// RecommendationOutput is the engine result.
type RecommendationOutput struct {
	Recommendations    []RecommendedTreatment `json:"recommendations"`
	TotalPriceKRW      int64                  `json:"totalPriceKRW"`
	TotalPriceUSD      int64                  `json:"totalPriceUSD"`
	Excluded           []ExcludedItem         `json:"excluded"`
	Substitutions      []Substitution         `json:"substitutions"`
	UpgradeSuggestions []UpgradeSuggestion    `json:"upgradeSuggestions"`
	Notes              []string               `json:"notes"`
	BudgetRangeID      string                 `json:"budgetRangeId"`
	BudgetUpperLimit   *int64                 `json:"budgetUpperLimit,omitempty"`
}

// StageResult is what every pipeline stage hands back to the driver.
// Reclassified replaces the reason of keys an earlier stage already excluded.
type StageResult struct {
	Candidates    []Candidate
	Excluded      []ExcludedItem
	Reclassified  []ExcludedItem
	Substitutions []Substitution
	Notes         []string
}

// keySet is a read-only view of keys a stage must not bring back.
type keySet map[string]struct{}

func (s keySet) has(key string) bool {
	_, ok := s[key]
	return ok
}

package matching

import (
	"errors"

	"consult-backend/internal/shared/telemetry"
)

// Engine runs the recommendation pipeline against a fixed catalog and rule
// set. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	catalog *Catalog
	rules   *Rules
	rates   RateSource
}

// NewEngine constructs an Engine. A nil rules falls back to DefaultRules.
func NewEngine(catalog *Catalog, rules *Rules, rates RateSource) (*Engine, error) {
	if catalog == nil {
		return nil, errors.New("matching: catalog is required")
	}
	if rates == nil {
		return nil, errors.New("matching: rate source is required")
	}
	if rules == nil {
		rules = DefaultRules()
	}
	return &Engine{catalog: catalog, rules: rules, rates: rates}, nil
}

// Catalog returns the catalog the engine was built with.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Rules returns the lookup tables the engine was built with.
func (e *Engine) Rules() *Rules {
	return e.rules
}

// trail folds stage deltas into the run-wide accumulators.
type trail struct {
	excluded      []ExcludedItem
	substitutions []Substitution
	notes         []string
	blocked       keySet
}

func (t *trail) fold(res StageResult) []Candidate {
	for _, item := range res.Excluded {
		t.blocked[item.Key] = struct{}{}
	}
	for _, sub := range res.Substitutions {
		t.blocked[sub.FromKey] = struct{}{}
	}
	for _, item := range res.Reclassified {
		for i := range t.excluded {
			if t.excluded[i].Key == item.Key {
				t.excluded[i] = item
				break
			}
		}
	}
	t.excluded = append(t.excluded, res.Excluded...)
	t.substitutions = append(t.substitutions, res.Substitutions...)
	t.notes = append(t.notes, res.Notes...)
	return res.Candidates
}

// Recommend runs the full pipeline. The error is non-nil only when the
// result breaks an internal invariant.
func (e *Engine) Recommend(in RecommendInputs) (RecommendationOutput, error) {
	cat, rules := e.catalog, e.rules

	var candidates []Candidate
	for _, concern := range in.SkinConcerns {
		candidates = AddUniqueCandidates(candidates, rules.MapConcernToCandidates(concern.ID))
	}
	for _, goal := range in.TreatmentGoals {
		candidates = AddUniqueCandidates(candidates, rules.MapGoalToCandidates(goal))
	}
	initial := cloneCandidates(candidates)

	candidates = applyTierWeighting(cat, candidates, AnalyzeTiers(in.SkinConcerns))
	candidates = rules.AdjustCandidatesByAgeGroup(candidates, in.AgeGroup)
	candidates = rules.AdjustCandidatesByGender(candidates, in.Gender)

	t := &trail{blocked: make(keySet)}
	candidates = t.fold(adjustForSensitiveSkin(cat, candidates, in.SkinTypeID))

	budgetUpper, known := cat.BudgetLimit(in.BudgetRangeID)
	if !known && in.BudgetRangeID != "" {
		telemetry.Warn("matching.unknown_budget_range", map[string]any{
			"budget_range_id": in.BudgetRangeID,
		})
	}

	candidates = t.fold(FilterByArea(cat, candidates, in.TreatmentAreas))
	for _, key := range cat.keysOutsideAreas(in.TreatmentAreas) {
		t.blocked[key] = struct{}{}
	}
	candidates = t.fold(rules.SubstituteForPriority(cat, candidates, in.PriorityID, t.blocked))
	candidates = t.fold(rules.EnforceBudget(cat, candidates, budgetUpper, in.PriorityID, t.blocked))
	candidates = t.fold(rules.ApplyPastFilters(cat, candidates, rules.NormalizePastTreatments(in.PastTreatments)))
	candidates = t.fold(rules.ApplyMedicalFilters(cat, candidates, in.MedicalConditions, t.excluded, t.substitutions))

	recs, total := assembleRecommendations(cat, candidates)
	out := RecommendationOutput{
		Recommendations:  recs,
		TotalPriceKRW:    total,
		TotalPriceUSD:    ConvertKRWToUSD(total, e.rates.KRWToUSD()),
		Excluded:         nonNilExcluded(t.excluded),
		Substitutions:    nonNilSubstitutions(t.substitutions),
		BudgetRangeID:    in.BudgetRangeID,
		BudgetUpperLimit: budgetUpper,
	}
	out.UpgradeSuggestions = rules.BuildUpgradeSuggestions(cat, UpgradeInput{
		Excluded:      out.Excluded,
		Substitutions: out.Substitutions,
		PriorityID:    in.PriorityID,
		BudgetRangeID: in.BudgetRangeID,
		BudgetUpper:   budgetUpper,
		TotalPriceKRW: total,
		Unsafe:        rules.contraindications(in.MedicalConditions),
	})

	notes := append([]string{}, t.notes...)
	if len(recs) == 0 {
		notes = append(notes, emptyResultNote(out.Excluded))
	}
	if n := substitutionNote(out.Substitutions); n != "" {
		notes = append(notes, n)
	}
	out.Notes = notes

	if err := CheckInvariants(initial, out); err != nil {
		telemetry.Error("matching.invariant_violation", map[string]any{
			"error":           err.Error(),
			"budget_range_id": in.BudgetRangeID,
			"catalog_version": cat.Version(),
		})
		return RecommendationOutput{}, err
	}

	telemetry.Debug("matching.complete", map[string]any{
		"catalog_version": cat.Version(),
		"candidates":      len(initial),
		"recommended":     len(out.Recommendations),
		"excluded":        len(out.Excluded),
		"substitutions":   len(out.Substitutions),
		"total_krw":       out.TotalPriceKRW,
	})
	return out, nil
}

func nonNilExcluded(in []ExcludedItem) []ExcludedItem {
	if in == nil {
		return []ExcludedItem{}
	}
	return in
}

func nonNilSubstitutions(in []Substitution) []Substitution {
	if in == nil {
		return []Substitution{}
	}
	return in
}

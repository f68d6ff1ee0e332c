package matching

import "strings"

// MapConcernToCandidates expands a concern id into its default candidates.
// Unknown ids yield nil.
func (r *Rules) MapConcernToCandidates(concernID string) []Candidate {
	return toCandidates(r.concerns[normalizeID(concernID)])
}

// MapGoalToCandidates expands a treatment goal id into its default candidates.
func (r *Rules) MapGoalToCandidates(goalID string) []Candidate {
	return toCandidates(r.goals[normalizeID(goalID)])
}

func toCandidates(entries []mappingEntry) []Candidate {
	if len(entries) == 0 {
		return nil
	}
	out := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		out = append(out, Candidate{
			Key:        e.key,
			Tier:       e.tier,
			Importance: e.importance,
			Why:        e.why,
		})
	}
	return out
}

// AddUniqueCandidates appends incoming candidates whose key is not yet in list.
// The first occurrence of a key wins. list is not modified.
func AddUniqueCandidates(list, incoming []Candidate) []Candidate {
	out := make([]Candidate, 0, len(list)+len(incoming))
	seen := make(map[string]struct{}, len(list)+len(incoming))
	for _, c := range list {
		if _, ok := seen[c.Key]; ok {
			continue
		}
		seen[c.Key] = struct{}{}
		out = append(out, c)
	}
	for _, c := range incoming {
		if _, ok := seen[c.Key]; ok {
			continue
		}
		seen[c.Key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// AdjustCandidatesByAgeGroup applies the age-group weighting table.
func (r *Rules) AdjustCandidatesByAgeGroup(candidates []Candidate, ageGroup string) []Candidate {
	return applyWeightRules(candidates, r.ageGroups[normalizeID(ageGroup)])
}

// AdjustCandidatesByGender applies the gender weighting table.
func (r *Rules) AdjustCandidatesByGender(candidates []Candidate, gender string) []Candidate {
	return applyWeightRules(candidates, r.genders[normalizeID(gender)])
}

func applyWeightRules(candidates []Candidate, rules []weightRule) []Candidate {
	out := make([]Candidate, len(candidates))
	copy(out, candidates)
	if len(rules) == 0 {
		return out
	}
	byKey := make(map[string]weightRule, len(rules))
	for _, rule := range rules {
		byKey[rule.key] = rule
	}
	for i, c := range out {
		rule, ok := byKey[c.Key]
		if !ok {
			continue
		}
		if rule.promote {
			c.Importance = c.Importance.Promote()
		} else {
			c.Importance = c.Importance.Demote()
		}
		c.Why = appendWhy(c.Why, rule.why)
		out[i] = c
	}
	return out
}

func appendWhy(base, extra string) string {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return base
	}
	if strings.TrimSpace(base) == "" {
		return extra
	}
	return base + "; " + extra
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

package matching

import "sort"

const (
	reasonAreaMismatch   = "Not relevant to selected area"
	reasonBudgetExceeded = "Budget limit exceeded"
)

// FilterByArea drops candidates whose catalog areas miss every selected area.
// An empty area selection leaves the list untouched.
func FilterByArea(catalog *Catalog, candidates []Candidate, areas []string) StageResult {
	selected := areaSet(areas)
	if len(selected) == 0 {
		return StageResult{Candidates: cloneCandidates(candidates)}
	}
	var res StageResult
	res.Candidates = make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if catalog.inArea(c.Key, selected) {
			res.Candidates = append(res.Candidates, c)
			continue
		}
		res.Excluded = append(res.Excluded, ExcludedItem{
			Key:    c.Key,
			Label:  catalog.Label(c.Key),
			Reason: reasonAreaMismatch,
			Kind:   ReasonAreaMismatch,
		})
	}
	return res
}

// SubstituteForPriority swaps or drops candidates that conflict with the
// user's priority axis. blocked holds keys that must not come back.
func (r *Rules) SubstituteForPriority(catalog *Catalog, candidates []Candidate, priorityID string, blocked keySet) StageResult {
	axis, ok := r.priorities[normalizeID(priorityID)]
	if !ok || (len(axis.substitutes) == 0 && len(axis.drops) == 0) {
		return StageResult{Candidates: cloneCandidates(candidates)}
	}

	present := make(keySet, len(candidates))
	for _, c := range candidates {
		present[c.Key] = struct{}{}
	}

	var res StageResult
	res.Candidates = make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		alt, hasAlt := axis.substitutes[c.Key]
		if hasAlt && catalog.Has(alt) && !blocked.has(alt) && alt != c.Key {
			res.Substitutions = append(res.Substitutions, Substitution{
				FromKey: c.Key,
				ToKey:   alt,
				Reason:  axis.substituteWhy + " (" + axis.phrase + ")",
				Kind:    ReasonPriorityMismatch,
			})
			delete(present, c.Key)
			if present.has(alt) {
				continue
			}
			present[alt] = struct{}{}
			t, _ := catalog.Lookup(alt)
			res.Candidates = append(res.Candidates, Candidate{
				Key:        alt,
				Tier:       t.Tier,
				Importance: c.Importance,
				Why:        appendWhy(c.Why, "replaces "+catalog.Label(c.Key)),
			})
			continue
		}
		if _, drop := axis.drops[c.Key]; drop {
			delete(present, c.Key)
			res.Excluded = append(res.Excluded, ExcludedItem{
				Key:    c.Key,
				Label:  catalog.Label(c.Key),
				Reason: "Excluded due to " + axis.phrase,
				Kind:   ReasonPriorityMismatch,
			})
			continue
		}
		res.Candidates = append(res.Candidates, c)
	}
	res.Candidates = dedupeCandidates(res.Candidates)
	return res
}

// EnforceBudget greedily trims the candidate set until its total fits within
// budgetUpper. A nil budget means unlimited and leaves the list untouched.
func (r *Rules) EnforceBudget(catalog *Catalog, candidates []Candidate, budgetUpper *int64, priorityID string, blocked keySet) StageResult {
	if budgetUpper == nil {
		return StageResult{Candidates: cloneCandidates(candidates)}
	}
	limit := *budgetUpper
	allowSubstitution := normalizeID(priorityID) != PriorityEffect

	type slot struct {
		cand Candidate
		seq  int
	}
	ordered := make([]slot, 0, len(candidates))
	var total int64
	for i, c := range candidates {
		ordered = append(ordered, slot{cand: c, seq: i})
		total += catalog.Price(c.Key)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].cand.Importance != ordered[j].cand.Importance {
			return ordered[i].cand.Importance < ordered[j].cand.Importance
		}
		return ordered[i].seq < ordered[j].seq
	})

	present := make(keySet, len(candidates))
	for _, c := range candidates {
		present[c.Key] = struct{}{}
	}
	// Keys removed inside this stage are as final as the caller's.
	gone := make(keySet, len(blocked))
	for k := range blocked {
		gone[k] = struct{}{}
	}

	var res StageResult
	for total > limit && len(ordered) > 0 {
		last := len(ordered) - 1
		victim := ordered[last]
		victimPrice := catalog.Price(victim.cand.Key)

		if allowSubstitution {
			if alt, ok := r.budgetSubstitute(catalog, victim.cand.Key, gone, present); ok {
				altPrice := catalog.Price(alt)
				if total-victimPrice+altPrice <= limit {
					res.Substitutions = append(res.Substitutions, Substitution{
						FromKey: victim.cand.Key,
						ToKey:   alt,
						Reason:  "Swapped for a lower-cost " + catalog.Label(alt) + " to fit the budget",
						Kind:    ReasonBudgetExceeded,
					})
					delete(present, victim.cand.Key)
					gone[victim.cand.Key] = struct{}{}
					present[alt] = struct{}{}
					ordered[last].cand = Candidate{
						Key:        alt,
						Tier:       victim.cand.Tier,
						Importance: victim.cand.Importance,
						Why:        appendWhy(victim.cand.Why, "budget-friendly alternative"),
					}
					total = total - victimPrice + altPrice
					continue
				}
			}
		}

		res.Excluded = append(res.Excluded, ExcludedItem{
			Key:    victim.cand.Key,
			Label:  catalog.Label(victim.cand.Key),
			Reason: reasonBudgetExceeded,
			Kind:   ReasonBudgetExceeded,
		})
		delete(present, victim.cand.Key)
		gone[victim.cand.Key] = struct{}{}
		ordered = ordered[:last]
		total -= victimPrice
	}

	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })
	res.Candidates = make([]Candidate, 0, len(ordered))
	for _, s := range ordered {
		res.Candidates = append(res.Candidates, s.cand)
	}
	return res
}

// budgetSubstitute returns a strictly cheaper same-tier alternative for key.
func (r *Rules) budgetSubstitute(catalog *Catalog, key string, blocked, present keySet) (string, bool) {
	alt, ok := r.budgetSubstitutes[key]
	if !ok || alt == key || blocked.has(alt) || present.has(alt) {
		return "", false
	}
	from, okFrom := catalog.Lookup(key)
	to, okTo := catalog.Lookup(alt)
	if !okFrom || !okTo {
		return "", false
	}
	if to.Tier != from.Tier || to.PriceKRW >= from.PriceKRW {
		return "", false
	}
	return alt, true
}

func cloneCandidates(in []Candidate) []Candidate {
	out := make([]Candidate, len(in))
	copy(out, in)
	return out
}

func dedupeCandidates(in []Candidate) []Candidate {
	return AddUniqueCandidates(nil, in)
}

func areaSet(areas []string) keySet {
	selected := make(keySet, len(areas))
	for _, a := range areas {
		if id := normalizeID(a); id != "" {
			selected[id] = struct{}{}
		}
	}
	return selected
}

package matching

import "fmt"

// UpgradeInput is the accumulated trail the suggester reinterprets.
type UpgradeInput struct {
	Excluded      []ExcludedItem
	Substitutions []Substitution
	PriorityID    string
	BudgetRangeID string
	BudgetUpper   *int64
	TotalPriceKRW int64
	// Unsafe keys are never suggested, whatever the trail says.
	Unsafe map[string]string
}

// BuildUpgradeSuggestions explains what a larger budget or another priority
// would unlock. It only reads the exclusion and substitution trail.
func (r *Rules) BuildUpgradeSuggestions(catalog *Catalog, in UpgradeInput) []UpgradeSuggestion {
	out := make([]UpgradeSuggestion, 0)
	seen := make(map[string]struct{})
	add := func(s UpgradeSuggestion) {
		if _, dup := seen[s.Key]; dup {
			return
		}
		if _, unsafe := in.Unsafe[s.Key]; unsafe {
			return
		}
		seen[s.Key] = struct{}{}
		out = append(out, s)
	}

	phrase := ""
	if axis, ok := r.priorities[normalizeID(in.PriorityID)]; ok {
		phrase = axis.phrase
	}

	for _, item := range in.Excluded {
		switch item.Kind {
		case ReasonBudgetExceeded:
			price := catalog.Price(item.Key)
			tier, ok := nextBudgetTier(catalog, in, price)
			if !ok {
				continue
			}
			add(UpgradeSuggestion{
				Kind:                   UpgradeKindBudget,
				Key:                    item.Key,
				Label:                  item.Label,
				SuggestedBudgetRangeID: tier.ID,
				AdditionalKRW:          price,
				Message:                fmt.Sprintf("Raising your budget to %s would make %s available.", tierName(tier), item.Label),
			})
		case ReasonPriorityMismatch:
			add(UpgradeSuggestion{
				Kind:    UpgradeKindPriority,
				Key:     item.Key,
				Label:   item.Label,
				Message: priorityMessage(item.Label, phrase),
			})
		}
	}

	for _, sub := range in.Substitutions {
		fromLabel := catalog.Label(sub.FromKey)
		switch sub.Kind {
		case ReasonBudgetExceeded:
			extra := catalog.Price(sub.FromKey) - catalog.Price(sub.ToKey)
			if extra <= 0 {
				continue
			}
			tier, ok := nextBudgetTier(catalog, in, extra)
			if !ok {
				continue
			}
			add(UpgradeSuggestion{
				Kind:                   UpgradeKindBudget,
				Key:                    sub.FromKey,
				Label:                  fromLabel,
				SuggestedBudgetRangeID: tier.ID,
				AdditionalKRW:          extra,
				Message:                fmt.Sprintf("With a budget of %s you could choose %s instead of %s.", tierName(tier), fromLabel, catalog.Label(sub.ToKey)),
			})
		case ReasonPriorityMismatch:
			add(UpgradeSuggestion{
				Kind:    UpgradeKindPriority,
				Key:     sub.FromKey,
				Label:   fromLabel,
				Message: priorityMessage(fromLabel, phrase),
			})
		}
	}
	return out
}

// nextBudgetTier returns the cheapest tier other than the current one that
// covers the current total plus extra.
func nextBudgetTier(catalog *Catalog, in UpgradeInput, extra int64) (BudgetTier, bool) {
	if in.BudgetUpper == nil {
		return BudgetTier{}, false
	}
	tier, ok := catalog.SmallestTierCovering(in.TotalPriceKRW + extra)
	if !ok || tier.ID == in.BudgetRangeID {
		return BudgetTier{}, false
	}
	return tier, true
}

func tierName(t BudgetTier) string {
	if t.Label != "" {
		return t.Label
	}
	return t.ID
}

func priorityMessage(label, phrase string) string {
	if phrase == "" {
		return fmt.Sprintf("%s is available with a different priority.", label)
	}
	return fmt.Sprintf("%s is available if you choose a priority other than %s.", label, phrase)
}

package matching

import (
	"fmt"
	"math"
	"sort"
)

// RateSource supplies the KRW to USD conversion rate.
type RateSource interface {
	KRWToUSD() float64
}

// FixedRate is a RateSource with a constant rate.
type FixedRate float64

// KRWToUSD implements RateSource.
func (r FixedRate) KRWToUSD() float64 { return float64(r) }

// ConvertKRWToUSD rounds amount*rate to whole dollars.
func ConvertKRWToUSD(amount int64, rate float64) int64 {
	return int64(math.Round(float64(amount) * rate))
}

// assembleRecommendations orders the surviving candidates by importance then
// catalog position and prices them.
func assembleRecommendations(catalog *Catalog, candidates []Candidate) ([]RecommendedTreatment, int64) {
	ordered := cloneCandidates(candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Importance != ordered[j].Importance {
			return ordered[i].Importance < ordered[j].Importance
		}
		return catalog.Order(ordered[i].Key) < catalog.Order(ordered[j].Key)
	})
	out := make([]RecommendedTreatment, 0, len(ordered))
	var total int64
	for _, c := range ordered {
		price := catalog.Price(c.Key)
		total += price
		out = append(out, RecommendedTreatment{
			Key:      c.Key,
			Label:    catalog.Label(c.Key),
			Tier:     c.Tier,
			PriceKRW: price,
			Why:      c.Why,
		})
	}
	return out, total
}

const (
	noteNoCandidates = "No treatments matched the concerns and goals you selected. A coordinator will review your questionnaire personally."
	noteArea         = "None of the matching treatments apply to the areas you selected. Try adding another treatment area."
	noteBudget       = "Your budget is too low for the treatments that match your concerns. Consider a higher budget range or focusing on fewer concerns."
	noteMedical      = "The matching treatments are not suitable for the medical conditions you reported. The doctor can suggest safe alternatives during the consultation."
	noteRecency      = "You had a similar treatment too recently. The matching treatments become available once the recommended interval has passed."
	notePriority     = "Your selected priority ruled out the matching treatments. Choosing a different priority will show more options."
)

type reasonGroup struct {
	reason string
	kind   ReasonKind
	count  int
	first  int
}

// topExclusionGroup groups excluded items by reason and returns the largest
// group; ties go to the reason seen first.
func topExclusionGroup(excluded []ExcludedItem) (reasonGroup, bool) {
	if len(excluded) == 0 {
		return reasonGroup{}, false
	}
	groups := make([]reasonGroup, 0, 4)
	index := make(map[string]int)
	for i, item := range excluded {
		if idx, ok := index[item.Reason]; ok {
			groups[idx].count++
			continue
		}
		index[item.Reason] = len(groups)
		groups = append(groups, reasonGroup{reason: item.Reason, kind: item.Kind, count: 1, first: i})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].first < groups[j].first
	})
	return groups[0], true
}

// emptyResultNote explains why nothing was recommended. An empty trail means
// nothing ever matched; that and any unknown kind get the coordinator note.
func emptyResultNote(excluded []ExcludedItem) string {
	top, ok := topExclusionGroup(excluded)
	if !ok {
		return noteNoCandidates
	}
	switch top.kind {
	case ReasonAreaMismatch:
		return noteArea
	case ReasonBudgetExceeded:
		return noteBudget
	case ReasonMedicalContraindication:
		return noteMedical
	case ReasonRecencyWindow:
		return noteRecency
	case ReasonPriorityMismatch:
		return notePriority
	}
	return noteNoCandidates
}

func substitutionNote(subs []Substitution) string {
	if len(subs) == 0 {
		return ""
	}
	if len(subs) == 1 {
		return "1 treatment was replaced with an alternative that better fits your budget or priority."
	}
	return fmt.Sprintf("%d treatments were replaced with alternatives that better fit your budget or priority.", len(subs))
}

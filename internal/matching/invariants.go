package matching

import (
	"errors"
	"fmt"
)

// ErrInvariantViolation marks an internally inconsistent pipeline result.
var ErrInvariantViolation = errors.New("matching invariant violated")

// CheckInvariants validates out against the candidates the run started with.
func CheckInvariants(initial []Candidate, out RecommendationOutput) error {
	recommended := make(map[string]struct{}, len(out.Recommendations))
	var total int64
	for _, rec := range out.Recommendations {
		if _, dup := recommended[rec.Key]; dup {
			return fmt.Errorf("%w: %q recommended twice", ErrInvariantViolation, rec.Key)
		}
		recommended[rec.Key] = struct{}{}
		total += rec.PriceKRW
	}
	if total != out.TotalPriceKRW {
		return fmt.Errorf("%w: total %d does not match line items %d", ErrInvariantViolation, out.TotalPriceKRW, total)
	}

	excluded := make(map[string]struct{}, len(out.Excluded))
	for _, item := range out.Excluded {
		if _, dup := excluded[item.Key]; dup {
			return fmt.Errorf("%w: %q excluded twice", ErrInvariantViolation, item.Key)
		}
		if _, ok := recommended[item.Key]; ok {
			return fmt.Errorf("%w: %q both recommended and excluded", ErrInvariantViolation, item.Key)
		}
		excluded[item.Key] = struct{}{}
	}

	substituted := make(map[string]struct{}, 2*len(out.Substitutions))
	for _, sub := range out.Substitutions {
		if _, ok := recommended[sub.FromKey]; ok {
			return fmt.Errorf("%w: substituted %q still recommended", ErrInvariantViolation, sub.FromKey)
		}
		substituted[sub.FromKey] = struct{}{}
		substituted[sub.ToKey] = struct{}{}
	}

	for _, c := range initial {
		_, inRec := recommended[c.Key]
		_, inExcl := excluded[c.Key]
		_, inSub := substituted[c.Key]
		if !inRec && !inExcl && !inSub {
			return fmt.Errorf("%w: %q disappeared without a trace", ErrInvariantViolation, c.Key)
		}
	}

	if out.BudgetUpperLimit != nil && total > *out.BudgetUpperLimit {
		return fmt.Errorf("%w: total %d exceeds budget %d", ErrInvariantViolation, total, *out.BudgetUpperLimit)
	}
	return nil
}

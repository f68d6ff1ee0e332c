package matching

// PastTreatmentVocabularyVersion is the id vocabulary NormalizePastTreatments
// produces. Bump it when spacing rule ids change.
const PastTreatmentVocabularyVersion = 2

// legacyPastTreatmentIDs maps v1 questionnaire ids onto the current vocabulary.
// An empty target means the answer carries no spacing constraint.
var legacyPastTreatmentIDs = map[string]string{
	"none":          "",
	"laser":         "laser_2w",
	"recent_laser":  "laser_2w",
	"laser_2weeks":  "laser_2w",
	"booster":       "skinbooster_2w",
	"skin_booster":  "skinbooster_2w",
	"botox":         "botox_3m",
	"botox_3months": "botox_3m",
	"filler":        "filler_6m",
	"lifting":       "lifting_6m",
	"hifu":          "lifting_6m",
	"peel":          "peel_1w",
}

// NormalizePastTreatments maps raw, possibly legacy, answers onto current ids.
// Unknown ids are dropped and the result is deduplicated in input order.
func (r *Rules) NormalizePastTreatments(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		id := normalizeID(item)
		if _, current := r.spacing[id]; !current {
			mapped, legacy := legacyPastTreatmentIDs[id]
			if !legacy || mapped == "" {
				continue
			}
			id = mapped
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ApplyPastFilters excludes candidates that fall inside a spacing window of a
// recent treatment. pastTreatments must already be normalized.
func (r *Rules) ApplyPastFilters(catalog *Catalog, candidates []Candidate, pastTreatments []string) StageResult {
	reasons := make(map[string]string)
	for _, id := range pastTreatments {
		rule, ok := r.spacing[id]
		if !ok {
			continue
		}
		for _, key := range rule.keys {
			if _, set := reasons[key]; !set {
				reasons[key] = rule.reason
			}
		}
	}
	return excludeByReason(catalog, candidates, reasons, ReasonRecencyWindow)
}

const medicalSafetyNote = "Some treatments were removed because of the medical conditions you reported. Please confirm your history with the doctor during the consultation."

// ApplyMedicalFilters excludes candidates contraindicated for any declared
// condition. Keys an earlier stage excluded for another reason are
// reclassified so the trail names the safety reason, and contraindicated keys
// an earlier stage substituted away are excluded too while their substitution
// record stays. A single safety note is added when any of this happens.
func (r *Rules) ApplyMedicalFilters(catalog *Catalog, candidates []Candidate, conditions []string, prior []ExcludedItem, subs []Substitution) StageResult {
	reasons := r.contraindications(conditions)
	res := excludeByReason(catalog, candidates, reasons, ReasonMedicalContraindication)
	seen := make(keySet, len(prior)+len(res.Excluded))
	for _, item := range res.Excluded {
		seen[item.Key] = struct{}{}
	}
	for _, item := range prior {
		seen[item.Key] = struct{}{}
		reason, hit := reasons[item.Key]
		if !hit || item.Kind == ReasonMedicalContraindication {
			continue
		}
		res.Reclassified = append(res.Reclassified, ExcludedItem{
			Key:    item.Key,
			Label:  item.Label,
			Reason: reason,
			Kind:   ReasonMedicalContraindication,
		})
	}
	for _, sub := range subs {
		reason, hit := reasons[sub.FromKey]
		if !hit || seen.has(sub.FromKey) {
			continue
		}
		seen[sub.FromKey] = struct{}{}
		res.Excluded = append(res.Excluded, ExcludedItem{
			Key:    sub.FromKey,
			Label:  catalog.Label(sub.FromKey),
			Reason: reason,
			Kind:   ReasonMedicalContraindication,
		})
	}
	if len(res.Excluded) > 0 || len(res.Reclassified) > 0 {
		res.Notes = []string{medicalSafetyNote}
	}
	return res
}

// contraindications maps each unsafe key to the reason of the first declared
// condition, in medicalOrder, that rules it out.
func (r *Rules) contraindications(conditions []string) map[string]string {
	declared := make(keySet, len(conditions))
	for _, c := range conditions {
		declared[normalizeID(c)] = struct{}{}
	}
	reasons := make(map[string]string)
	for _, cond := range r.medicalOrder {
		if !declared.has(cond) {
			continue
		}
		rule := r.medical[cond]
		for _, key := range rule.keys {
			if _, set := reasons[key]; !set {
				reasons[key] = rule.reason
			}
		}
	}
	return reasons
}

func excludeByReason(catalog *Catalog, candidates []Candidate, reasons map[string]string, kind ReasonKind) StageResult {
	if len(reasons) == 0 {
		return StageResult{Candidates: cloneCandidates(candidates)}
	}
	var res StageResult
	res.Candidates = make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		reason, hit := reasons[c.Key]
		if !hit {
			res.Candidates = append(res.Candidates, c)
			continue
		}
		res.Excluded = append(res.Excluded, ExcludedItem{
			Key:    c.Key,
			Label:  catalog.Label(c.Key),
			Reason: reason,
			Kind:   kind,
		})
	}
	return res
}

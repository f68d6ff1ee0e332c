package matching

// TierSummary counts the selected concerns per tier.
type TierSummary struct {
	Tier1Count int
	Tier3Count int
	HasTier3   bool
}

// AnalyzeTiers counts skin and contouring concerns.
func AnalyzeTiers(concerns []Concern) TierSummary {
	var s TierSummary
	for _, c := range concerns {
		switch c.Tier {
		case TierSkin:
			s.Tier1Count++
		case TierContouring:
			s.Tier3Count++
		}
	}
	s.HasTier3 = s.Tier3Count > 0
	return s
}

// applyTierWeighting promotes tier-3 injectables when contouring was selected
// and tier-1 lasers when skin concerns dominate.
func applyTierWeighting(catalog *Catalog, candidates []Candidate, summary TierSummary) []Candidate {
	out := make([]Candidate, len(candidates))
	copy(out, candidates)
	skinDominant := summary.Tier1Count > summary.Tier3Count
	for i, c := range out {
		t, ok := catalog.Lookup(c.Key)
		if !ok {
			continue
		}
		if summary.HasTier3 && c.Tier == TierContouring && t.Category == CategoryInjectable {
			c.Importance = c.Importance.Promote()
		}
		if skinDominant && c.Tier == TierSkin && t.Category == CategoryLaser {
			c.Importance = c.Importance.Promote()
		}
		out[i] = c
	}
	return out
}

const sensitiveSkinNote = "Sensitive skin: painful or skin-injuring treatments were ranked lower. Ask for a patch test before your first session."

// adjustForSensitiveSkin demotes painful or wound-creating candidates. The
// caution note is emitted once whenever the skin type is sensitive.
func adjustForSensitiveSkin(catalog *Catalog, candidates []Candidate, skinTypeID string) StageResult {
	out := make([]Candidate, len(candidates))
	copy(out, candidates)
	if normalizeID(skinTypeID) != SkinTypeSensitive {
		return StageResult{Candidates: out}
	}
	for i, c := range out {
		t, ok := catalog.Lookup(c.Key)
		if !ok {
			continue
		}
		if t.Pain >= 6 || t.CreatesWound {
			c.Importance = c.Importance.Demote()
			out[i] = c
		}
	}
	return StageResult{Candidates: out, Notes: []string{sensitiveSkinNote}}
}

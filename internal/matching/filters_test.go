package matching

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	return catalog
}

func keysOf(cands []Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Key)
	}
	return out
}

func TestImportanceClamps(t *testing.T) {
	if ImportanceHigh.Promote() != ImportanceHigh {
		t.Fatalf("promote must stop at high")
	}
	if ImportanceLow.Demote() != ImportanceLow {
		t.Fatalf("demote must stop at low")
	}
	if NewImportance(0) != ImportanceHigh || NewImportance(9) != ImportanceLow {
		t.Fatalf("NewImportance must clamp")
	}
	if ImportanceMedium.Promote() != ImportanceHigh || ImportanceMedium.Demote() != ImportanceLow {
		t.Fatalf("unexpected step")
	}
}

func TestAddUniqueCandidatesFirstWins(t *testing.T) {
	list := []Candidate{{Key: "a", Importance: ImportanceLow, Why: "first"}}
	incoming := []Candidate{
		{Key: "a", Importance: ImportanceHigh, Why: "second"},
		{Key: "b", Importance: ImportanceMedium},
		{Key: "b", Importance: ImportanceHigh},
	}
	got := AddUniqueCandidates(list, incoming)
	want := []Candidate{
		{Key: "a", Importance: ImportanceLow, Why: "first"},
		{Key: "b", Importance: ImportanceMedium},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if len(list) != 1 {
		t.Fatalf("input list must not change")
	}
}

func TestMappersNormalizeIDs(t *testing.T) {
	rules := DefaultRules()
	if got := rules.MapConcernToCandidates("  ACNE_SCAR "); len(got) != 1 || got[0].Key != "pico_laser" {
		t.Fatalf("unexpected concern mapping %+v", got)
	}
	if got := rules.MapGoalToCandidates("unknown"); got != nil {
		t.Fatalf("expected nil for unknown goal, got %+v", got)
	}
}

func TestAdjustCandidatesByAgeAndGender(t *testing.T) {
	rules := DefaultRules()
	in := []Candidate{
		{Key: "ulthera", Importance: ImportanceMedium},
		{Key: "aqua_peel", Importance: ImportanceLow},
		{Key: "filler", Importance: ImportanceHigh},
	}

	got := rules.AdjustCandidatesByAgeGroup(in, "20s")
	if got[0].Importance != ImportanceLow || got[1].Importance != ImportanceMedium {
		t.Fatalf("unexpected age weighting %+v", got)
	}
	if got[0].Why == "" {
		t.Fatalf("expected age rationale")
	}
	if in[0].Importance != ImportanceMedium {
		t.Fatalf("input must not change")
	}

	got = rules.AdjustCandidatesByGender(in, "male")
	if got[2].Importance != ImportanceMedium {
		t.Fatalf("expected filler demoted for male, got %+v", got[2])
	}
}

func TestApplyTierWeighting(t *testing.T) {
	catalog := testCatalog(t)
	in := []Candidate{
		{Key: "filler", Tier: TierContouring, Importance: ImportanceMedium},
		{Key: "laser_toning", Tier: TierSkin, Importance: ImportanceMedium},
		{Key: "aqua_peel", Tier: TierSkin, Importance: ImportanceMedium},
	}

	got := applyTierWeighting(catalog, in, AnalyzeTiers([]Concern{{ID: "volume_loss", Tier: TierContouring}}))
	if got[0].Importance != ImportanceHigh || got[1].Importance != ImportanceMedium {
		t.Fatalf("expected only the injectable promoted, got %+v", got)
	}

	got = applyTierWeighting(catalog, in, AnalyzeTiers([]Concern{{Tier: TierSkin}, {Tier: TierSkin}, {Tier: TierContouring}}))
	if got[0].Importance != ImportanceHigh || got[1].Importance != ImportanceHigh || got[2].Importance != ImportanceMedium {
		t.Fatalf("expected injectable and laser promoted, got %+v", got)
	}
}

func TestAdjustForSensitiveSkin(t *testing.T) {
	catalog := testCatalog(t)
	in := []Candidate{
		{Key: "microneedling", Importance: ImportanceHigh},
		{Key: "aqua_peel", Importance: ImportanceHigh},
	}

	res := adjustForSensitiveSkin(catalog, in, "normal")
	if len(res.Notes) != 0 || res.Candidates[0].Importance != ImportanceHigh {
		t.Fatalf("normal skin must be untouched, got %+v", res)
	}

	res = adjustForSensitiveSkin(catalog, in, "sensitive")
	if res.Candidates[0].Importance != ImportanceMedium || res.Candidates[1].Importance != ImportanceHigh {
		t.Fatalf("unexpected sensitive weighting %+v", res.Candidates)
	}
	if len(res.Notes) != 1 {
		t.Fatalf("expected one caution note, got %v", res.Notes)
	}
}

func TestFilterByArea(t *testing.T) {
	catalog := testCatalog(t)
	in := []Candidate{{Key: "jaw_botox"}, {Key: "botox"}, {Key: "ipl"}}

	res := FilterByArea(catalog, in, nil)
	if len(res.Candidates) != 3 || len(res.Excluded) != 0 {
		t.Fatalf("empty selection must keep everything, got %+v", res)
	}

	res = FilterByArea(catalog, in, []string{" Eyes "})
	if diff := cmp.Diff([]string{"botox"}, keysOf(res.Candidates)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if len(res.Excluded) != 2 || res.Excluded[0].Reason != reasonAreaMismatch {
		t.Fatalf("unexpected exclusions %+v", res.Excluded)
	}
}

func TestSubstituteForPriority(t *testing.T) {
	catalog := testCatalog(t)
	rules := DefaultRules()
	in := []Candidate{
		{Key: "ulthera", Tier: TierAntiAging, Importance: ImportanceHigh, Why: "lift"},
		{Key: "thread_lift", Tier: TierAntiAging, Importance: ImportanceLow},
		{Key: "thermage", Tier: TierAntiAging, Importance: ImportanceMedium},
	}

	res := rules.SubstituteForPriority(catalog, in, PriorityPrice, keySet{})
	if diff := cmp.Diff([]string{"shurink"}, keysOf(res.Candidates)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if res.Candidates[0].Importance != ImportanceHigh {
		t.Fatalf("substitute must inherit importance, got %+v", res.Candidates[0])
	}
	if len(res.Substitutions) != 2 {
		t.Fatalf("expected two substitutions, got %+v", res.Substitutions)
	}
	want := []ExcludedItem{{
		Key:    "thread_lift",
		Label:  "Thread Lift",
		Reason: "Excluded due to cost priority",
		Kind:   ReasonPriorityMismatch,
	}}
	if diff := cmp.Diff(want, res.Excluded); diff != "" {
		t.Fatalf("excluded mismatch (-want +got):\n%s", diff)
	}

	blocked := keySet{"shurink": {}}
	res = rules.SubstituteForPriority(catalog, in[:1], PriorityPrice, blocked)
	if len(res.Substitutions) != 0 || res.Candidates[0].Key != "ulthera" {
		t.Fatalf("blocked alternative must not be used, got %+v", res)
	}

	res = rules.SubstituteForPriority(catalog, in, PriorityEffect, keySet{})
	if diff := cmp.Diff(in, res.Candidates); diff != "" {
		t.Fatalf("effect priority must be a no-op (-want +got):\n%s", diff)
	}
}

func TestEnforceBudget(t *testing.T) {
	catalog := testCatalog(t)
	rules := DefaultRules()
	limit := func(v int64) *int64 { return &v }

	t.Run("unlimited", func(t *testing.T) {
		in := []Candidate{{Key: "thermage", Importance: ImportanceHigh}}
		res := rules.EnforceBudget(catalog, in, nil, "", keySet{})
		if len(res.Candidates) != 1 || len(res.Excluded) != 0 {
			t.Fatalf("unexpected %+v", res)
		}
	})

	t.Run("drops_lowest_priority_last_inserted", func(t *testing.T) {
		in := []Candidate{
			{Key: "botox", Importance: ImportanceMedium},
			{Key: "aqua_peel", Importance: ImportanceMedium},
			{Key: "ipl", Importance: ImportanceHigh},
		}
		res := rules.EnforceBudget(catalog, in, limit(220000), PriorityEffect, keySet{})
		if diff := cmp.Diff([]string{"botox", "ipl"}, keysOf(res.Candidates)); diff != "" {
			t.Fatalf("mismatch (-want +got):\n%s", diff)
		}
		if len(res.Excluded) != 1 || res.Excluded[0].Key != "aqua_peel" {
			t.Fatalf("unexpected exclusions %+v", res.Excluded)
		}
	})

	t.Run("zero_limit_terminates", func(t *testing.T) {
		in := []Candidate{
			{Key: "laser_toning", Importance: ImportanceHigh},
			{Key: "pico_laser", Importance: ImportanceLow},
			{Key: "fraxel", Importance: ImportanceMedium},
		}
		res := rules.EnforceBudget(catalog, in, limit(0), "", keySet{})
		if len(res.Candidates) != 0 || len(res.Excluded) != 3 {
			t.Fatalf("expected everything excluded, got %+v", res)
		}
		if len(res.Substitutions) != 0 {
			t.Fatalf("no substitute fits a zero budget, got %+v", res.Substitutions)
		}
	})

	t.Run("stage_exclusions_never_return_as_substitutes", func(t *testing.T) {
		in := []Candidate{
			{Key: "pico_laser", Importance: ImportanceHigh},
			{Key: "laser_toning", Importance: ImportanceLow},
		}
		res := rules.EnforceBudget(catalog, in, limit(150000), "", keySet{})
		for _, sub := range res.Substitutions {
			if sub.ToKey == "laser_toning" {
				t.Fatalf("laser_toning was excluded earlier in the stage, got %+v", res)
			}
		}
	})
}

func TestPastTreatments(t *testing.T) {
	rules := DefaultRules()
	got := rules.NormalizePastTreatments([]string{"Recent_Laser", "laser_2w", "none", "bogus", "hifu"})
	if diff := cmp.Diff([]string{"laser_2w", "lifting_6m"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	catalog := testCatalog(t)
	in := []Candidate{{Key: "fraxel"}, {Key: "shurink"}, {Key: "botox"}}
	res := rules.ApplyPastFilters(catalog, in, []string{"peel_1w", "laser_2w"})
	if diff := cmp.Diff([]string{"shurink", "botox"}, keysOf(res.Candidates)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if res.Excluded[0].Reason != "Had a peel in the last week" || res.Excluded[0].Kind != ReasonRecencyWindow {
		t.Fatalf("expected first matching rule to name the reason, got %+v", res.Excluded[0])
	}
}

func TestApplyMedicalFilters(t *testing.T) {
	catalog := testCatalog(t)
	rules := DefaultRules()

	res := rules.ApplyMedicalFilters(catalog, []Candidate{{Key: "botox"}}, nil, nil, nil)
	if len(res.Candidates) != 1 || len(res.Notes) != 0 {
		t.Fatalf("no conditions must be a no-op, got %+v", res)
	}

	res = rules.ApplyMedicalFilters(catalog,
		[]Candidate{{Key: "botox"}, {Key: "laser_toning"}},
		[]string{ConditionBloodClotting, "PREGNANCY"},
		nil, nil,
	)
	if len(res.Excluded) != 1 || res.Excluded[0].Reason != "Not recommended during pregnancy" {
		t.Fatalf("expected pregnancy to name the exclusion, got %+v", res.Excluded)
	}
	if len(res.Notes) != 1 {
		t.Fatalf("expected one safety note, got %v", res.Notes)
	}

	prior := []ExcludedItem{{Key: "filler", Label: "Dermal Filler", Reason: reasonBudgetExceeded, Kind: ReasonBudgetExceeded}}
	res = rules.ApplyMedicalFilters(catalog, nil, []string{ConditionPregnancy}, prior, nil)
	if len(res.Reclassified) != 1 || res.Reclassified[0].Kind != ReasonMedicalContraindication {
		t.Fatalf("expected budget exclusion reclassified, got %+v", res.Reclassified)
	}
	if prior[0].Kind != ReasonBudgetExceeded {
		t.Fatalf("prior trail must not be mutated")
	}
}

func TestApplyMedicalFiltersSubstitutedKeys(t *testing.T) {
	catalog := testCatalog(t)
	rules := DefaultRules()

	cases := []struct {
		name         string
		candidates   []Candidate
		conditions   []string
		prior        []ExcludedItem
		subs         []Substitution
		wantExcluded []ExcludedItem
		wantNote     bool
	}{
		{
			name:       "budget",
			candidates: []Candidate{{Key: "aqua_peel"}},
			conditions: []string{ConditionPregnancy},
			subs:       []Substitution{{FromKey: "skinbooster", ToKey: "aqua_peel", Kind: ReasonBudgetExceeded}},
			wantExcluded: []ExcludedItem{
				{Key: "skinbooster", Label: "Skin Booster", Reason: "Not recommended during pregnancy", Kind: ReasonMedicalContraindication},
			},
			wantNote: true,
		},
		{
			name:       "priority",
			candidates: []Candidate{{Key: "skinbooster"}, {Key: "aqua_peel"}},
			conditions: []string{ConditionBloodClotting},
			subs:       []Substitution{{FromKey: "microneedling", ToKey: "skinbooster", Kind: ReasonPriorityMismatch}},
			wantExcluded: []ExcludedItem{
				{Key: "skinbooster", Label: "Skin Booster", Reason: "Blood clotting disorder: bruising and bleeding risk", Kind: ReasonMedicalContraindication},
				{Key: "microneedling", Label: "Microneedling", Reason: "Blood clotting disorder: bruising and bleeding risk", Kind: ReasonMedicalContraindication},
			},
			wantNote: true,
		},
		{
			name:       "already_excluded",
			candidates: []Candidate{{Key: "aqua_peel"}},
			conditions: []string{ConditionPregnancy},
			prior:      []ExcludedItem{{Key: "skinbooster", Label: "Skin Booster", Reason: reasonBudgetExceeded, Kind: ReasonBudgetExceeded}},
			subs:       []Substitution{{FromKey: "skinbooster", ToKey: "aqua_peel", Kind: ReasonBudgetExceeded}},
			wantNote:   true,
		},
		{
			name:       "safe_source",
			candidates: []Candidate{{Key: "shurink"}},
			conditions: []string{ConditionPregnancy},
			subs:       []Substitution{{FromKey: "thermage", ToKey: "shurink", Kind: ReasonBudgetExceeded}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subs := append([]Substitution(nil), tc.subs...)
			res := rules.ApplyMedicalFilters(catalog, tc.candidates, tc.conditions, tc.prior, subs)
			if diff := cmp.Diff(tc.wantExcluded, res.Excluded); diff != "" {
				t.Fatalf("excluded mismatch (-want +got):\n%s", diff)
			}
			if got := len(res.Notes) == 1 && res.Notes[0] == medicalSafetyNote; got != tc.wantNote {
				t.Fatalf("expected safety note %v, got %v", tc.wantNote, res.Notes)
			}
			if len(res.Substitutions) != 0 {
				t.Fatalf("stage must not add substitutions, got %+v", res.Substitutions)
			}
			if diff := cmp.Diff(tc.subs, subs); diff != "" {
				t.Fatalf("substitution trail mutated (-want +got):\n%s", diff)
			}
		})
	}
}

package matching

type mappingEntry struct {
	key        string
	tier       Tier
	importance Importance
	why        string
}

type weightRule struct {
	key     string
	promote bool
	why     string
}

type priorityAxis struct {
	phrase        string
	substitutes   map[string]string
	drops         map[string]struct{}
	substituteWhy string
}

type spacingRule struct {
	keys   []string
	reason string
}

type contraindication struct {
	keys   []string
	reason string
}

// Rules holds the static lookup tables the pipeline consults. All maps are
// read-only after construction.
type Rules struct {
	concerns          map[string][]mappingEntry
	goals             map[string][]mappingEntry
	ageGroups         map[string][]weightRule
	genders           map[string][]weightRule
	priorities        map[string]priorityAxis
	budgetSubstitutes map[string]string
	spacing           map[string]spacingRule
	medical           map[string]contraindication
	// medicalOrder fixes which condition names an exclusion when several apply.
	medicalOrder []string
}

const (
	SkinTypeSensitive = "sensitive"

	PriorityDowntime = "downtime"
	PriorityPrice    = "price"
	PrioritySpeed    = "speed"
	PriorityEffect   = "effect"

	ConditionPregnancy         = "pregnancy"
	ConditionBloodClotting     = "blood_clotting"
	ConditionImmunosuppression = "immunosuppression"
	ConditionKeloid            = "keloid"
	ConditionPhotosensitivity  = "photosensitivity"
)

// DefaultRules returns the production lookup tables.
func DefaultRules() *Rules {
	return &Rules{
		concerns:          defaultConcernMap,
		goals:             defaultGoalMap,
		ageGroups:         defaultAgeRules,
		genders:           defaultGenderRules,
		priorities:        defaultPriorityAxes,
		budgetSubstitutes: defaultBudgetSubstitutes,
		spacing:           defaultSpacingRules,
		medical:           defaultContraindications,
		medicalOrder: []string{
			ConditionPregnancy,
			ConditionBloodClotting,
			ConditionImmunosuppression,
			ConditionKeloid,
			ConditionPhotosensitivity,
		},
	}
}

var defaultConcernMap = map[string][]mappingEntry{
	"acne": {
		{key: "chemical_peel", tier: TierSkin, importance: ImportanceHigh, why: "Peeling clears clogged pores behind active acne"},
		{key: "aqua_peel", tier: TierSkin, importance: ImportanceMedium, why: "Gentle deep cleansing for acne-prone skin"},
	},
	"acne_scar": {
		{key: "pico_laser", tier: TierSkin, importance: ImportanceHigh, why: "Pico laser remodels acne scar texture"},
	},
	"pigmentation": {
		{key: "laser_toning", tier: TierSkin, importance: ImportanceHigh, why: "Toning breaks up melasma and dark spots"},
		{key: "ipl", tier: TierSkin, importance: ImportanceMedium, why: "IPL evens out sun spots"},
	},
	"redness": {
		{key: "ipl", tier: TierSkin, importance: ImportanceHigh, why: "IPL targets visible vessels and flushing"},
	},
	"pores": {
		{key: "microneedling", tier: TierSkin, importance: ImportanceHigh, why: "Microneedling tightens enlarged pores"},
		{key: "aqua_peel", tier: TierSkin, importance: ImportanceLow, why: "Deep cleansing reduces pore congestion"},
	},
	"dryness": {
		{key: "skinbooster", tier: TierSkin, importance: ImportanceHigh, why: "Skin booster restores hydration from within"},
	},
	"dullness": {
		{key: "aqua_peel", tier: TierSkin, importance: ImportanceMedium, why: "Exfoliation restores radiance"},
		{key: "skinbooster", tier: TierSkin, importance: ImportanceMedium, why: "Hydration brightens dull skin"},
	},
	"wrinkles": {
		{key: "botox", tier: TierAntiAging, importance: ImportanceHigh, why: "Botox relaxes expression lines"},
		{key: "skinbooster", tier: TierSkin, importance: ImportanceLow, why: "Hydration softens fine lines"},
	},
	"sagging": {
		{key: "shurink", tier: TierAntiAging, importance: ImportanceHigh, why: "HIFU lifts the lower face"},
		{key: "ulthera", tier: TierAntiAging, importance: ImportanceMedium, why: "Ultherapy gives a deeper, longer-lasting lift"},
	},
	"elasticity": {
		{key: "thermage", tier: TierAntiAging, importance: ImportanceMedium, why: "Radiofrequency tightens loose skin"},
		{key: "shurink", tier: TierAntiAging, importance: ImportanceMedium, why: "HIFU firms the skin"},
	},
	"square_jaw": {
		{key: "jaw_botox", tier: TierContouring, importance: ImportanceHigh, why: "Jaw botox slims the masseter"},
	},
	"double_chin": {
		{key: "fat_dissolve", tier: TierContouring, importance: ImportanceHigh, why: "Injections dissolve submental fat"},
		{key: "shurink", tier: TierAntiAging, importance: ImportanceLow, why: "HIFU tightens the jawline"},
	},
	"volume_loss": {
		{key: "filler", tier: TierContouring, importance: ImportanceHigh, why: "Filler restores lost volume"},
	},
	"facial_asymmetry": {
		{key: "filler", tier: TierContouring, importance: ImportanceMedium, why: "Filler balances facial proportions"},
		{key: "jaw_botox", tier: TierContouring, importance: ImportanceMedium, why: "Jaw botox evens out the lower face"},
	},
}

var defaultGoalMap = map[string][]mappingEntry{
	"brightening": {
		{key: "laser_toning", tier: TierSkin, importance: ImportanceMedium, why: "Toning brightens overall tone"},
		{key: "aqua_peel", tier: TierSkin, importance: ImportanceLow, why: "Exfoliation adds glow"},
	},
	"anti_aging": {
		{key: "botox", tier: TierAntiAging, importance: ImportanceMedium, why: "Prevents lines from deepening"},
		{key: "ulthera", tier: TierAntiAging, importance: ImportanceMedium, why: "Stimulates collagen for lasting firmness"},
		{key: "thermage", tier: TierAntiAging, importance: ImportanceLow, why: "Tightens skin texture"},
	},
	"lifting": {
		{key: "shurink", tier: TierAntiAging, importance: ImportanceMedium, why: "Non-invasive lifting"},
		{key: "thread_lift", tier: TierAntiAging, importance: ImportanceLow, why: "Immediate mechanical lift"},
	},
	"v_line": {
		{key: "jaw_botox", tier: TierContouring, importance: ImportanceMedium, why: "Slimmer jaw for a V-line"},
		{key: "fat_dissolve", tier: TierContouring, importance: ImportanceMedium, why: "Sharper jaw contour"},
	},
	"hydration": {
		{key: "skinbooster", tier: TierSkin, importance: ImportanceMedium, why: "Long-lasting moisture"},
	},
	"clear_skin": {
		{key: "chemical_peel", tier: TierSkin, importance: ImportanceMedium, why: "Resurfaces uneven texture"},
		{key: "ipl", tier: TierSkin, importance: ImportanceLow, why: "Clears redness and spots"},
	},
	"natural_volume": {
		{key: "filler", tier: TierContouring, importance: ImportanceMedium, why: "Subtle volume where it was lost"},
	},
}

var defaultAgeRules = map[string][]weightRule{
	"20s": {
		{key: "aqua_peel", promote: true, why: "well suited to younger skin"},
		{key: "laser_toning", promote: true, why: "well suited to younger skin"},
		{key: "ulthera", promote: false, why: "lifting is rarely needed in the 20s"},
		{key: "thermage", promote: false, why: "lifting is rarely needed in the 20s"},
		{key: "thread_lift", promote: false, why: "lifting is rarely needed in the 20s"},
	},
	"30s": {
		{key: "skinbooster", promote: true, why: "early collagen support in the 30s"},
		{key: "botox", promote: true, why: "prevents lines setting in the 30s"},
	},
	"40s": {
		{key: "shurink", promote: true, why: "common first lifting step in the 40s"},
		{key: "ulthera", promote: true, why: "common first lifting step in the 40s"},
		{key: "botox", promote: true, why: "expression lines deepen in the 40s"},
	},
	"50s": {
		{key: "ulthera", promote: true, why: "deeper lifting pays off in the 50s"},
		{key: "thermage", promote: true, why: "skin laxity increases in the 50s"},
		{key: "thread_lift", promote: true, why: "skin laxity increases in the 50s"},
	},
	"60plus": {
		{key: "thermage", promote: true, why: "gentle tightening for mature skin"},
		{key: "thread_lift", promote: true, why: "visible lift for mature skin"},
		{key: "fraxel", promote: false, why: "slower healing with mature skin"},
	},
}

var defaultGenderRules = map[string][]weightRule{
	"male": {
		{key: "pico_laser", promote: true, why: "popular with male patients"},
		{key: "botox", promote: true, why: "popular with male patients"},
		{key: "filler", promote: false, why: "less often requested by male patients"},
	},
}

var defaultPriorityAxes = map[string]priorityAxis{
	PriorityDowntime: {
		phrase: "downtime priority",
		substitutes: map[string]string{
			"fraxel":        "pico_laser",
			"microneedling": "skinbooster",
			"chemical_peel": "aqua_peel",
		},
		drops:         map[string]struct{}{"thread_lift": {}},
		substituteWhy: "Swapped for a lower-downtime alternative",
	},
	PriorityPrice: {
		phrase: "cost priority",
		substitutes: map[string]string{
			"ulthera":    "shurink",
			"thermage":   "shurink",
			"pico_laser": "laser_toning",
		},
		drops:         map[string]struct{}{"thread_lift": {}},
		substituteWhy: "Swapped for a more affordable alternative",
	},
	PrioritySpeed: {
		phrase: "fast-results priority",
		substitutes: map[string]string{
			"microneedling": "skinbooster",
			"fraxel":        "laser_toning",
		},
		drops:         map[string]struct{}{"ulthera": {}, "thermage": {}},
		substituteWhy: "Swapped for a faster-acting alternative",
	},
	PriorityEffect: {
		phrase: "effect priority",
	},
}

// Cheaper same-tier alternatives the budget filter may fall back to.
var defaultBudgetSubstitutes = map[string]string{
	"ulthera":       "shurink",
	"thermage":      "shurink",
	"thread_lift":   "shurink",
	"fraxel":        "pico_laser",
	"pico_laser":    "laser_toning",
	"laser_toning":  "ipl",
	"microneedling": "chemical_peel",
	"skinbooster":   "aqua_peel",
	"filler":        "fat_dissolve",
}

var defaultSpacingRules = map[string]spacingRule{
	"laser_2w": {
		keys:   []string{"laser_toning", "pico_laser", "fraxel", "ipl"},
		reason: "Had a laser treatment in the last 2 weeks",
	},
	"skinbooster_2w": {
		keys:   []string{"skinbooster", "microneedling"},
		reason: "Had a skin booster in the last 2 weeks",
	},
	"botox_3m": {
		keys:   []string{"botox", "jaw_botox"},
		reason: "Had botox in the last 3 months",
	},
	"filler_6m": {
		keys:   []string{"filler"},
		reason: "Had filler in the last 6 months",
	},
	"lifting_6m": {
		keys:   []string{"ulthera", "thermage", "shurink", "thread_lift"},
		reason: "Had a lifting treatment in the last 6 months",
	},
	"peel_1w": {
		keys:   []string{"chemical_peel", "aqua_peel", "fraxel"},
		reason: "Had a peel in the last week",
	},
}

var defaultContraindications = map[string]contraindication{
	ConditionPregnancy: {
		keys:   []string{"botox", "jaw_botox", "filler", "fat_dissolve", "skinbooster", "fraxel", "chemical_peel", "thread_lift"},
		reason: "Not recommended during pregnancy",
	},
	ConditionBloodClotting: {
		keys:   []string{"botox", "jaw_botox", "filler", "fat_dissolve", "skinbooster", "microneedling", "thread_lift"},
		reason: "Blood clotting disorder: bruising and bleeding risk",
	},
	ConditionImmunosuppression: {
		keys:   []string{"fraxel", "microneedling", "chemical_peel", "thread_lift"},
		reason: "Immunosuppression: infection risk from skin injury",
	},
	ConditionKeloid: {
		keys:   []string{"fraxel", "microneedling", "thread_lift"},
		reason: "Keloid tendency: scarring risk",
	},
	ConditionPhotosensitivity: {
		keys:   []string{"laser_toning", "pico_laser", "fraxel", "ipl"},
		reason: "Photosensitivity: light-based treatment risk",
	},
}

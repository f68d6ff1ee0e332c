package matching

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Treatment categories referenced by weighting rules.
const (
	CategoryLaser      = "laser"
	CategoryInjectable = "injectable"
	CategoryLifting    = "lifting"
	CategorySkincare   = "skincare"
	CategoryDevice     = "device"
	CategoryProcedure  = "procedure"
)

// Treatment is one catalog entry.
type Treatment struct {
	Key          string   `yaml:"key" json:"key"`
	Label        string   `yaml:"label" json:"label"`
	Tier         Tier     `yaml:"tier" json:"tier"`
	Category     string   `yaml:"category" json:"category"`
	Pain         int      `yaml:"pain" json:"pain"`
	CreatesWound bool     `yaml:"createsWound" json:"createsWound"`
	PriceKRW     int64    `yaml:"priceKRW" json:"priceKRW"`
	Areas        []string `yaml:"areas" json:"areas"`
}

// BudgetTier maps a budget range id to its upper spending limit. A nil
// UpperKRW means the tier is unlimited.
type BudgetTier struct {
	ID       string `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	UpperKRW *int64 `yaml:"upperKRW" json:"upperKRW,omitempty"`
}

// Catalog is the immutable treatment and budget configuration.
type Catalog struct {
	version     string
	treatments  []Treatment
	byKey       map[string]int
	budgetTiers []BudgetTier
	budgetByID  map[string]int
}

type catalogFile struct {
	Version     string       `yaml:"version"`
	Treatments  []Treatment  `yaml:"treatments"`
	BudgetTiers []BudgetTier `yaml:"budgetTiers"`
}

var errEmptyCatalog = errors.New("catalog has no treatments")

// DefaultCatalog parses the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalogFile reads a catalog YAML file from disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewCatalog(file.Version, file.Treatments, file.BudgetTiers)
}

// NewCatalog validates and indexes the given entries. Slices are copied.
func NewCatalog(version string, treatments []Treatment, tiers []BudgetTier) (*Catalog, error) {
	if len(treatments) == 0 {
		return nil, errEmptyCatalog
	}
	c := &Catalog{
		version:     strings.TrimSpace(version),
		treatments:  make([]Treatment, 0, len(treatments)),
		byKey:       make(map[string]int, len(treatments)),
		budgetTiers: make([]BudgetTier, 0, len(tiers)),
		budgetByID:  make(map[string]int, len(tiers)),
	}
	for _, t := range treatments {
		t.Key = strings.TrimSpace(t.Key)
		if t.Key == "" {
			return nil, errors.New("catalog treatment with empty key")
		}
		if _, dup := c.byKey[t.Key]; dup {
			return nil, fmt.Errorf("duplicate catalog key %q", t.Key)
		}
		if t.Tier < TierSkin || t.Tier > TierContouring {
			return nil, fmt.Errorf("treatment %q: tier %d out of range", t.Key, t.Tier)
		}
		if t.Pain < 0 || t.Pain > 10 {
			return nil, fmt.Errorf("treatment %q: pain %d out of range", t.Key, t.Pain)
		}
		if t.PriceKRW < 0 {
			return nil, fmt.Errorf("treatment %q: negative price", t.Key)
		}
		t.Areas = append([]string(nil), t.Areas...)
		c.byKey[t.Key] = len(c.treatments)
		c.treatments = append(c.treatments, t)
	}

	var prev int64 = -1
	seenUnlimited := false
	for _, bt := range tiers {
		bt.ID = strings.TrimSpace(bt.ID)
		if bt.ID == "" {
			return nil, errors.New("budget tier with empty id")
		}
		if _, dup := c.budgetByID[bt.ID]; dup {
			return nil, fmt.Errorf("duplicate budget tier %q", bt.ID)
		}
		if seenUnlimited {
			return nil, fmt.Errorf("budget tier %q follows the unlimited tier", bt.ID)
		}
		if bt.UpperKRW == nil {
			seenUnlimited = true
		} else {
			if *bt.UpperKRW < 0 || *bt.UpperKRW <= prev {
				return nil, fmt.Errorf("budget tier %q: limits must be ascending and non-negative", bt.ID)
			}
			prev = *bt.UpperKRW
			limit := *bt.UpperKRW
			bt.UpperKRW = &limit
		}
		c.budgetByID[bt.ID] = len(c.budgetTiers)
		c.budgetTiers = append(c.budgetTiers, bt)
	}
	return c, nil
}

// Version identifies the catalog revision.
func (c *Catalog) Version() string {
	return c.version
}

// Lookup returns the entry for key.
func (c *Catalog) Lookup(key string) (Treatment, bool) {
	idx, ok := c.byKey[key]
	if !ok {
		return Treatment{}, false
	}
	return c.treatments[idx], true
}

// Has reports whether key is a catalog treatment.
func (c *Catalog) Has(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// Price returns the KRW price for key, or 0 when the key is unknown.
func (c *Catalog) Price(key string) int64 {
	t, _ := c.Lookup(key)
	return t.PriceKRW
}

// Label returns the display label for key, falling back to the key itself.
func (c *Catalog) Label(key string) string {
	if t, ok := c.Lookup(key); ok && t.Label != "" {
		return t.Label
	}
	return key
}

// Order returns the catalog position of key; unknown keys sort last.
func (c *Catalog) Order(key string) int {
	if idx, ok := c.byKey[key]; ok {
		return idx
	}
	return len(c.treatments)
}

// Treatments returns a copy of all entries in catalog order.
func (c *Catalog) Treatments() []Treatment {
	out := make([]Treatment, len(c.treatments))
	copy(out, c.treatments)
	return out
}

// BudgetTiers returns a copy of the budget tiers in ascending order.
func (c *Catalog) BudgetTiers() []BudgetTier {
	out := make([]BudgetTier, len(c.budgetTiers))
	copy(out, c.budgetTiers)
	return out
}

// BudgetLimit resolves a budget range id. The bool is false when the range is
// unknown; a nil limit with a true bool means the tier is unlimited.
func (c *Catalog) BudgetLimit(id string) (*int64, bool) {
	idx, ok := c.budgetByID[strings.TrimSpace(id)]
	if !ok {
		return nil, false
	}
	limit := c.budgetTiers[idx].UpperKRW
	if limit == nil {
		return nil, true
	}
	v := *limit
	return &v, true
}

// SmallestTierCovering returns the cheapest budget tier whose limit is at
// least amount. Unlimited tiers cover everything.
func (c *Catalog) SmallestTierCovering(amount int64) (BudgetTier, bool) {
	for _, bt := range c.budgetTiers {
		if bt.UpperKRW == nil || *bt.UpperKRW >= amount {
			return bt, true
		}
	}
	return BudgetTier{}, false
}

func (c *Catalog) inArea(key string, areas keySet) bool {
	t, ok := c.Lookup(key)
	if !ok {
		return false
	}
	for _, a := range t.Areas {
		if areas.has(a) {
			return true
		}
	}
	return false
}

// keysOutsideAreas lists catalog keys that serve none of areas. An empty
// selection restricts nothing.
func (c *Catalog) keysOutsideAreas(areas []string) []string {
	selected := areaSet(areas)
	if len(selected) == 0 {
		return nil
	}
	var out []string
	for _, t := range c.treatments {
		if !c.inArea(t.Key, selected) {
			out = append(out, t.Key)
		}
	}
	return out
}

package usecase

import "strings"

// MixerCost is a per-ml cost for a known non-alcoholic ingredient
type MixerCost struct {
	Name      string  `json:"name"`
	CostPerML float64 `json:"costPerMl"`
}

// Fallback per-ml costs when a mixer is not in the table
const (
	fallbackJuiceCostPerML   = 0.01
	fallbackSyrupCostPerML   = 0.005
	fallbackBittersCostPerML = 0.15
	fallbackMixerCostPerML   = 0.005
)

// MixerStore is the availability reported for mixers; they are grocery items
// outside the scraped catalog and always assumed in stock.
const MixerStore = "grocery_store"

// defaultMixerCosts is matched by substring in this order; the first hit wins.
var defaultMixerCosts = []MixerCost{
	{"simple syrup", 0.002},
	{"lime juice", 0.02}, // fresh lime
	{"lemon juice", 0.02},
	{"orange juice", 0.005},
	{"cranberry juice", 0.004},
	{"club soda", 0.001},
	{"tonic water", 0.002},
	{"ginger beer", 0.003},
	{"grenadine", 0.01},
	{"angostura bitters", 0.20}, // expensive per ml, used by the dash
	{"salt", 0.0001},
	{"sugar", 0.001},
}

// MixerCostTable prices non-alcoholic ingredients. It is immutable once built.
type MixerCostTable struct {
	entries []MixerCost
}

// NewMixerCostTable builds a table from entries, preserving their order.
// A nil or empty slice yields the default table.
func NewMixerCostTable(entries []MixerCost) *MixerCostTable {
	if len(entries) == 0 {
		entries = defaultMixerCosts
	}
	table := &MixerCostTable{entries: make([]MixerCost, len(entries))}
	for i, entry := range entries {
		table.entries[i] = MixerCost{Name: strings.ToLower(entry.Name), CostPerML: entry.CostPerML}
	}
	return table
}

// DefaultMixerCostTable returns the built-in mixer price list.
func DefaultMixerCostTable() *MixerCostTable {
	return NewMixerCostTable(nil)
}

// CostPerML returns the per-ml cost for ingredientName, falling back to
// keyword-based estimates when no table entry is a substring of the name.
func (t *MixerCostTable) CostPerML(ingredientName string) float64 {
	nameLower := strings.ToLower(ingredientName)

	for _, entry := range t.entries {
		if strings.Contains(nameLower, entry.Name) {
			return entry.CostPerML
		}
	}

	switch {
	case strings.Contains(nameLower, "juice"):
		return fallbackJuiceCostPerML
	case strings.Contains(nameLower, "syrup"):
		return fallbackSyrupCostPerML
	case strings.Contains(nameLower, "bitters"):
		return fallbackBittersCostPerML
	default:
		return fallbackMixerCostPerML
	}
}

// Entries returns a copy of the table in match order.
func (t *MixerCostTable) Entries() []MixerCost {
	out := make([]MixerCost, len(t.entries))
	copy(out, t.entries)
	return out
}

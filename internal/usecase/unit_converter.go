package usecase

import (
	"context"
	"strings"

	applog "github.com/pourcost/backend/internal/log"
)

// mlPerUnit maps lowercase unit names to millilitres per unit.
// Bar measures (dash, splash, leaves, pinch) are working estimates.
var mlPerUnit = map[string]float64{
	"ml":          1.0,
	"milliliter":  1.0,
	"milliliters": 1.0,
	"oz":          29.5735, // US fluid ounce
	"ounce":       29.5735,
	"ounces":      29.5735,
	"fl oz":       29.5735,
	"tbsp":        14.7868,
	"tablespoon":  14.7868,
	"tsp":         4.92892,
	"teaspoon":    4.92892,
	"dash":        0.625, // ~1/8 tsp
	"splash":      5.0,
	"drop":        0.05,
	"cl":          10.0,
	"dl":          100.0,
	"l":           1000.0,
	"cup":         236.588,
	"pint":        473.176,
	"shot":        44.3603, // 1.5 oz
	"jigger":      44.3603,
	"pony":        22.1802, // 0.75 oz
	"whole":       1.0,
	"leaves":      0.1,
	"pinch":       0.5,
}

// ToML converts amount in unit to millilitres.
// An unknown unit is logged and the amount is returned unchanged, i.e. treated
// as already being millilitres. Recipes with a misspelled unit stay costable.
func ToML(amount float64, unit string) float64 {
	factor, ok := mlPerUnit[normalizeUnit(unit)]
	if !ok {
		applog.Warn(context.Background(), "unknown unit, assuming ml", "unit", unit)
		return amount
	}
	return amount * factor
}

// KnownUnit reports whether unit is in the conversion table.
func KnownUnit(unit string) bool {
	_, ok := mlPerUnit[normalizeUnit(unit)]
	return ok
}

func normalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

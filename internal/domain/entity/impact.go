// Package entity contains the core business objects of the project.
package entity

// Impact holds the derived impact metrics of a donation quantity.
type Impact struct {
	Meals        float64 `json:"meals"`          // Estimated meals provided.
	WasteSavedKg float64 `json:"waste_saved_kg"` // Food waste diverted, in kilograms.
	CarbonSaved  float64 `json:"carbon_saved"`   // CO2-equivalent avoided, in kilograms.
}

// Add returns the element-wise sum of two impacts.
func (i Impact) Add(other Impact) Impact {
	return Impact{
		Meals:        i.Meals + other.Meals,
		WasteSavedKg: i.WasteSavedKg + other.WasteSavedKg,
		CarbonSaved:  i.CarbonSaved + other.CarbonSaved,
	}
}

// ImpactFactors are the per-kilogram conversion multipliers for one category.
type ImpactFactors struct {
	MealsPerKg  float64
	WastePerKg  float64
	CarbonPerKg float64
}

// impactFactorsByCategory maps food categories to conversion multipliers.
// The rule set is data-driven so new categories are a table entry, not code.
var impactFactorsByCategory = map[string]ImpactFactors{
	"Produce":      {MealsPerKg: 2.0, WastePerKg: 1.0, CarbonPerKg: 2.5},
	"Bakery":       {MealsPerKg: 2.5, WastePerKg: 1.0, CarbonPerKg: 1.8},
	"Dairy":        {MealsPerKg: 1.5, WastePerKg: 1.0, CarbonPerKg: 3.2},
	"Cooked Meals": {MealsPerKg: 3.0, WastePerKg: 1.0, CarbonPerKg: 2.8},
	"Canned Goods": {MealsPerKg: 1.8, WastePerKg: 1.0, CarbonPerKg: 1.5},
	"Beverages":    {MealsPerKg: 0.5, WastePerKg: 1.0, CarbonPerKg: 0.9},
}

// defaultImpactFactors applies to categories without a table entry.
var defaultImpactFactors = ImpactFactors{MealsPerKg: 2.0, WastePerKg: 1.0, CarbonPerKg: 2.0}

// FactorsForCategory returns the conversion multipliers for a category,
// falling back to the default entry for unrecognized categories.
func FactorsForCategory(category string) ImpactFactors {
	if factors, ok := impactFactorsByCategory[category]; ok {
		return factors
	}

	return defaultImpactFactors
}

// ComputeImpact derives impact metrics from a donation quantity and category.
// Pure and total: unknown categories use the default multipliers, and a
// non-positive quantity (a caller error, rejected at intake) yields zeroes.
func ComputeImpact(quantity float64, category string) Impact {
	if quantity <= 0 {
		return Impact{}
	}

	factors := FactorsForCategory(category)

	return Impact{
		Meals:        quantity * factors.MealsPerKg,
		WasteSavedKg: quantity * factors.WastePerKg,
		CarbonSaved:  quantity * factors.CarbonPerKg,
	}
}

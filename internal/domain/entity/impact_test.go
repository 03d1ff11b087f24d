package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeImpact_ProduceMultipliers(t *testing.T) {
	impact := ComputeImpact(10, "Produce")

	assert.InDelta(t, 20.0, impact.Meals, 1e-9)
	assert.InDelta(t, 10.0, impact.WasteSavedKg, 1e-9)
	assert.InDelta(t, 25.0, impact.CarbonSaved, 1e-9)
}

func TestComputeImpact_UnknownCategoryFallsBackToDefault(t *testing.T) {
	impact := ComputeImpact(4, "Mystery Box")

	assert.InDelta(t, 4*defaultImpactFactors.MealsPerKg, impact.Meals, 1e-9)
	assert.InDelta(t, 4*defaultImpactFactors.WastePerKg, impact.WasteSavedKg, 1e-9)
	assert.InDelta(t, 4*defaultImpactFactors.CarbonPerKg, impact.CarbonSaved, 1e-9)
}

func TestComputeImpact_NonNegativeForAllCategories(t *testing.T) {
	categories := []string{"Produce", "Bakery", "Dairy", "Cooked Meals", "Canned Goods", "Beverages", ""}

	for _, category := range categories {
		impact := ComputeImpact(2.5, category)

		assert.GreaterOrEqual(t, impact.Meals, 0.0, "category %q", category)
		assert.GreaterOrEqual(t, impact.WasteSavedKg, 0.0, "category %q", category)
		assert.GreaterOrEqual(t, impact.CarbonSaved, 0.0, "category %q", category)
	}
}

func TestComputeImpact_NonPositiveQuantityYieldsZero(t *testing.T) {
	assert.Equal(t, Impact{}, ComputeImpact(0, "Produce"))
	assert.Equal(t, Impact{}, ComputeImpact(-3, "Produce"))
}

func TestImpact_Add(t *testing.T) {
	sum := Impact{Meals: 1, WasteSavedKg: 2, CarbonSaved: 3}.Add(Impact{Meals: 4, WasteSavedKg: 5, CarbonSaved: 6})

	assert.Equal(t, Impact{Meals: 5, WasteSavedKg: 7, CarbonSaved: 9}, sum)
}

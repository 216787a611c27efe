package pipeline

import (
	"math"

	"github.com/ternarybob/mercatus/internal/models"
)

// returnBins maps the upper edge of each classification interval to its
// category. Intervals are left-open, right-closed over the return
// fraction: (-10,-5], (-5,-0.01], (-0.01,0], (0,0.01], (0.01,5], (5,10].
var returnBins = []struct {
	upper    float64
	category models.ColorCategory
}{
	{-5, models.CategoryDeepNegative},
	{-0.01, models.CategoryMildNegative},
	{0, models.CategoryNearZeroNegative},
	{0.01, models.CategoryNearZeroPositive},
	{5, models.CategoryMildPositive},
	{10, models.CategoryStrongPositive},
}

const (
	binFloor = float64(-10) // exclusive lower edge of the first interval
	binCeil  = float64(10)  // inclusive upper edge of the last interval
)

// classifyReturn assigns the color category for a return fraction. A value
// exactly on an edge belongs to the interval whose upper edge it equals.
// NaN and anything outside (binFloor, binCeil] stays unclassified.
func classifyReturn(v float64) models.ColorCategory {
	if math.IsNaN(v) || v <= binFloor || v > binCeil {
		return models.CategoryUnclassified
	}
	for _, bin := range returnBins {
		if v <= bin.upper {
			return bin.category
		}
	}
	return models.CategoryUnclassified
}

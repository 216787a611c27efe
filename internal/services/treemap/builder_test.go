package treemap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mercatus/internal/models"
)

func testRecords() []models.MergedRecord {
	return []models.MergedRecord{
		{Ticker: "AAA", Sector: "Tech", MarketCapMUSD: 1500, ReturnPct: 0.025, Category: models.CategoryMildPositive},
		{Ticker: "BBB", Sector: "Bank", MarketCapMUSD: 2000, ReturnPct: -0.01, Category: models.CategoryNearZeroNegative},
		{Ticker: "CCC", Sector: "Tech", MarketCapMUSD: 500, ReturnPct: 5.5, Category: models.CategoryStrongPositive},
	}
}

func TestBuildHierarchy(t *testing.T) {
	builder := NewBuilder(arbor.NewLogger())
	spec := builder.Build(testRecords())

	// Root + 2 sectors + 3 leaves
	require.Equal(t, 6, spec.NodeCount())
	assert.Equal(t, "treemap", spec.Type)
	assert.Equal(t, "total", spec.BranchValues)

	// Root carries the grand total
	assert.Equal(t, RootLabel, spec.Labels[0])
	assert.Equal(t, "", spec.Parents[0])
	assert.Equal(t, 4000.0, spec.Values[0])

	// Sectors appear in first-appearance order with summed values
	assert.Equal(t, "Tech", spec.Labels[1])
	assert.Equal(t, RootLabel, spec.Parents[1])
	assert.Equal(t, 2000.0, spec.Values[1])
	assert.Equal(t, NeutralColor, spec.Marker.Colors[1])

	// Leaf nodes hang off their sector with category colors
	aaaIdx := indexOf(t, spec.IDs, RootLabel+"/Tech/AAA")
	assert.Equal(t, RootLabel+"/Tech", spec.Parents[aaaIdx])
	assert.Equal(t, 1500.0, spec.Values[aaaIdx])
	assert.Equal(t, "lime", spec.Marker.Colors[aaaIdx])
	assert.Equal(t, [2]string{"0.025", "Tech"}, spec.CustomData[aaaIdx])

	bbbIdx := indexOf(t, spec.IDs, RootLabel+"/Bank/BBB")
	assert.Equal(t, "lightpink", spec.Marker.Colors[bbbIdx])
}

func TestBuildEveryRecordAppearsOnce(t *testing.T) {
	builder := NewBuilder(arbor.NewLogger())
	spec := builder.Build(testRecords())

	seen := make(map[string]int)
	for _, id := range spec.IDs {
		seen[id]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "node %q appears %d times", id, count)
	}
}

func TestBuildUnclassifiedLeafUsesNeutralColor(t *testing.T) {
	builder := NewBuilder(arbor.NewLogger())
	spec := builder.Build([]models.MergedRecord{
		{Ticker: "XXX", Sector: "Tech", MarketCapMUSD: 100, ReturnPct: math.NaN(), Category: models.CategoryUnclassified},
	})

	leafIdx := indexOf(t, spec.IDs, RootLabel+"/Tech/XXX")
	assert.Equal(t, NeutralColor, spec.Marker.Colors[leafIdx])
	assert.Equal(t, "NaN", spec.CustomData[leafIdx][0])
}

func TestBuildExcludesNonPositiveMarketCap(t *testing.T) {
	builder := NewBuilder(arbor.NewLogger())
	spec := builder.Build([]models.MergedRecord{
		{Ticker: "AAA", Sector: "Tech", MarketCapMUSD: 100, ReturnPct: 0.01, Category: models.CategoryNearZeroPositive},
		{Ticker: "ZRO", Sector: "Tech", MarketCapMUSD: 0, ReturnPct: 0.01, Category: models.CategoryNearZeroPositive},
		{Ticker: "NEG", Sector: "Tech", MarketCapMUSD: -5, ReturnPct: 0.01, Category: models.CategoryNearZeroPositive},
	})

	// Root + Tech + AAA only
	assert.Equal(t, 3, spec.NodeCount())
	assert.NotContains(t, spec.IDs, RootLabel+"/Tech/ZRO")
	assert.NotContains(t, spec.IDs, RootLabel+"/Tech/NEG")
	assert.Equal(t, 100.0, spec.Values[0])
}

func TestBuildAggregatesDuplicateLeaves(t *testing.T) {
	builder := NewBuilder(arbor.NewLogger())

	// Unanimous category survives aggregation
	spec := builder.Build([]models.MergedRecord{
		{Ticker: "DUP", Sector: "Tech", MarketCapMUSD: 100, ReturnPct: 0.02, Category: models.CategoryMildPositive},
		{Ticker: "DUP", Sector: "Tech", MarketCapMUSD: 50, ReturnPct: 0.03, Category: models.CategoryMildPositive},
	})
	leafIdx := indexOf(t, spec.IDs, RootLabel+"/Tech/DUP")
	assert.Equal(t, 150.0, spec.Values[leafIdx])
	assert.Equal(t, "lime", spec.Marker.Colors[leafIdx])

	// Disagreeing categories collapse to neutral
	spec = builder.Build([]models.MergedRecord{
		{Ticker: "DUP", Sector: "Tech", MarketCapMUSD: 100, ReturnPct: 0.02, Category: models.CategoryMildPositive},
		{Ticker: "DUP", Sector: "Tech", MarketCapMUSD: 50, ReturnPct: -0.03, Category: models.CategoryMildNegative},
	})
	leafIdx = indexOf(t, spec.IDs, RootLabel+"/Tech/DUP")
	assert.Equal(t, NeutralColor, spec.Marker.Colors[leafIdx])
}

func TestBuildEmptyInput(t *testing.T) {
	builder := NewBuilder(arbor.NewLogger())
	spec := builder.Build(nil)

	// Just the root with zero value
	require.Equal(t, 1, spec.NodeCount())
	assert.Equal(t, 0.0, spec.Values[0])
}

func indexOf(t *testing.T, ids []string, id string) int {
	t.Helper()
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	t.Fatalf("node %q not found in %v", id, ids)
	return -1
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/mercatus/internal/models"
)

func TestMergeRecordsCardinality(t *testing.T) {
	sector := []models.SectorRecord{
		{Ticker: "A", Sector: "Tech", MarketCapMUSD: 100},
		{Ticker: "B", Sector: "Bank", MarketCapMUSD: 200},
		{Ticker: "C", Sector: "Tech", MarketCapMUSD: 300},
	}
	returns := []models.ReturnRecord{
		{Ticker: "B", ReturnPct: 0.01},
		{Ticker: "C", ReturnPct: -0.02},
		{Ticker: "D", ReturnPct: 0.03},
	}

	merged := mergeRecords(sector, returns)

	// Only the ticker intersection survives, in sector input order
	require.Len(t, merged, 2)
	assert.Equal(t, "B", merged[0].Ticker)
	assert.Equal(t, "Bank", merged[0].Sector)
	assert.Equal(t, 200.0, merged[0].MarketCapMUSD)
	assert.Equal(t, 0.01, merged[0].ReturnPct)
	assert.Equal(t, "C", merged[1].Ticker)
}

func TestMergeRecordsCaseSensitive(t *testing.T) {
	sector := []models.SectorRecord{{Ticker: "aaa", Sector: "Tech", MarketCapMUSD: 1}}
	returns := []models.ReturnRecord{{Ticker: "AAA", ReturnPct: 0.01}}

	assert.Empty(t, mergeRecords(sector, returns))
}

func TestMergeRecordsDuplicateTickers(t *testing.T) {
	sector := []models.SectorRecord{
		{Ticker: "A", Sector: "Tech", MarketCapMUSD: 100},
		{Ticker: "A", Sector: "Tech", MarketCapMUSD: 100},
	}
	returns := []models.ReturnRecord{
		{Ticker: "A", ReturnPct: 0.01},
		{Ticker: "A", ReturnPct: 0.02},
	}

	// Duplicates expand as a cross product, deliberately uncorrected
	merged := mergeRecords(sector, returns)
	require.Len(t, merged, 4)
	assert.Equal(t, 0.01, merged[0].ReturnPct)
	assert.Equal(t, 0.02, merged[1].ReturnPct)
}

func TestMergeRecordsAssignsCategory(t *testing.T) {
	sector := []models.SectorRecord{{Ticker: "A", Sector: "Tech", MarketCapMUSD: 100}}
	returns := []models.ReturnRecord{{Ticker: "A", ReturnPct: 0.025}}

	merged := mergeRecords(sector, returns)
	require.Len(t, merged, 1)
	assert.Equal(t, models.CategoryMildPositive, merged[0].Category)
}

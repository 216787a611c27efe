package pipeline

import "github.com/ternarybob/mercatus/internal/models"

// mergeRecords inner-joins sector and return records on ticker. Tickers
// present on only one side are dropped. No deduplication happens: a
// duplicated ticker joins against every matching row on the other side.
// Output order is deterministic: sector input order, then return input
// order within a ticker.
func mergeRecords(sector []models.SectorRecord, returns []models.ReturnRecord) []models.MergedRecord {
	byTicker := make(map[string][]models.ReturnRecord, len(returns))
	for _, r := range returns {
		byTicker[r.Ticker] = append(byTicker[r.Ticker], r)
	}

	merged := make([]models.MergedRecord, 0, len(sector))
	for _, sec := range sector {
		for _, ret := range byTicker[sec.Ticker] {
			merged = append(merged, models.MergedRecord{
				Ticker:        sec.Ticker,
				Sector:        sec.Sector,
				MarketCapMUSD: sec.MarketCapMUSD,
				ReturnPct:     ret.ReturnPct,
				Category:      classifyReturn(ret.ReturnPct),
			})
		}
	}

	return merged
}

package models

import "time"

// MarketSnapshot is one complete pipeline result: the merged records, the
// chart built from them and the headline summary, stamped with a fetch time.
// ID and FetchedAt live here rather than on the records or the chart so two
// runs over identical input produce identical Records and Chart values.
type MarketSnapshot struct {
	ID        string         `json:"id"`
	FetchedAt time.Time      `json:"fetched_at"`
	Source    string         `json:"source"`
	Records   []MergedRecord `json:"records"`
	Chart     *ChartSpec     `json:"chart"`
	Summary   Summary        `json:"summary"`
}

// IsFresh reports whether the snapshot is younger than the given TTL
func (s *MarketSnapshot) IsFresh(ttl time.Duration) bool {
	if s == nil {
		return false
	}
	return time.Since(s.FetchedAt) < ttl
}

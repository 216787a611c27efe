package pipeline

import (
	"math"
	"strconv"

	"github.com/ternarybob/mercatus/internal/htmltable"
	"github.com/ternarybob/mercatus/internal/models"
	"github.com/ternarybob/mercatus/internal/numfmt"
)

// Column names as the source page prints them. The page is Turkish; the
// builders look these up verbatim.
const (
	ColumnTicker    = "Kod"
	ColumnSector    = "Sektör"
	ColumnMarketCap = "Piyasa Değeri (mn $)"
	ColumnReturn    = "Günlük Getiri (%)"
)

// buildSectorRecords projects the fundamentals table into sector records.
// A market cap that fails numeric normalization is a row-local data quality
// failure: the row is dropped with a warning and the build continues.
// A missing required column is a layout failure for the whole run.
func (s *Service) buildSectorRecords(t *htmltable.Table) ([]models.SectorRecord, error) {
	for _, column := range []string{ColumnTicker, ColumnSector, ColumnMarketCap} {
		if _, ok := t.Column(column); !ok {
			return nil, &htmltable.LayoutError{Column: column}
		}
	}

	records := make([]models.SectorRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		ticker, _ := t.Cell(i, ColumnTicker)
		if ticker == "" {
			continue
		}
		sector, _ := t.Cell(i, ColumnSector)
		rawCap, _ := t.Cell(i, ColumnMarketCap)

		marketCap, err := numfmt.Parse(rawCap)
		if err != nil {
			s.logger.Warn().
				Str("ticker", ticker).
				Str("market_cap", rawCap).
				Msg("Dropping row with unparseable market cap")
			continue
		}

		records = append(records, models.SectorRecord{
			Ticker:        ticker,
			Sector:        sector,
			MarketCapMUSD: marketCap,
		})
	}

	return records, nil
}

// buildReturnRecords projects the returns table into return records. The
// return cell has shipped in two shapes over time, so parsing is a
// two-path policy with an explicit trigger:
//
//  1. primary: the cell is a plain number already scaled by 100
//  2. fallback, entered only when the primary parse fails: a percent
//     string like "2,50%" normalized via numfmt
//
// Both paths divide by 100 so the stored value is a fraction. A cell that
// fails both paths coerces to NaN and the record is kept; it surfaces
// later as unclassified rather than silently vanishing.
func (s *Service) buildReturnRecords(t *htmltable.Table) ([]models.ReturnRecord, error) {
	for _, column := range []string{ColumnTicker, ColumnReturn} {
		if _, ok := t.Column(column); !ok {
			return nil, &htmltable.LayoutError{Column: column}
		}
	}

	records := make([]models.ReturnRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		ticker, _ := t.Cell(i, ColumnTicker)
		if ticker == "" {
			continue
		}
		raw, _ := t.Cell(i, ColumnReturn)

		records = append(records, models.ReturnRecord{
			Ticker:    ticker,
			ReturnPct: s.parseReturnCell(ticker, raw),
		})
	}

	return records, nil
}

func (s *Service) parseReturnCell(ticker, raw string) float64 {
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v / 100
	}

	v, err := numfmt.ParsePercent(raw)
	if err != nil {
		s.logger.Warn().
			Str("ticker", ticker).
			Str("return", raw).
			Msg("Return value unparseable on both paths, keeping as NaN")
		return math.NaN()
	}
	return v / 100
}

// Package treemap builds the hierarchical chart specification from
// classified market records: a three-level treemap (exchange, sector,
// ticker) sized by market cap and colored by return category.
package treemap

import (
	"math"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mercatus/internal/models"
)

// RootLabel is the fixed label of the hierarchy root.
const RootLabel = "Borsa İstanbul"

// NeutralColor fills non-leaf nodes and unclassified leaves.
const NeutralColor = "#262931"

// categoryColors is the fixed category to color mapping for leaf nodes.
var categoryColors = map[models.ColorCategory]string{
	models.CategoryDeepNegative:     "red",
	models.CategoryMildNegative:     "indianred",
	models.CategoryNearZeroNegative: "lightpink",
	models.CategoryNearZeroPositive: "lightgreen",
	models.CategoryMildPositive:     "lime",
	models.CategoryStrongPositive:   "green",
	models.CategoryUnclassified:     NeutralColor,
}

const (
	hoverTemplate = "Hisse: %{label}<br>Piyasa Değeri (mn $): %{value}<br>Getiri: %{customdata[0]}<br>Sektör: %{customdata[1]}"
	textTemplate  = "<b>%{label}</b><br>%{customdata[0]} %"
)

// Builder constructs ChartSpec values from merged records.
type Builder struct {
	logger arbor.ILogger
}

// NewBuilder creates a treemap spec builder.
func NewBuilder(logger arbor.ILogger) *Builder {
	return &Builder{logger: logger}
}

// leaf is one aggregated (sector, ticker) node before layout.
type leaf struct {
	sector    string
	ticker    string
	value     float64
	category  models.ColorCategory
	returnStr string
	unanimous bool
}

// Build lays out root, sector and leaf nodes into flat parallel arrays.
// Records with a non-positive market cap are excluded from the hierarchy
// (they would invert the sizing) and logged; they stay in the record set
// the chart was built from. Duplicate (sector, ticker) pairs aggregate
// into one leaf: values sum, the category survives only when every
// contributing record agrees on it. Node order is first-appearance order,
// so identical input yields an identical spec.
func (b *Builder) Build(records []models.MergedRecord) *models.ChartSpec {
	sectorOrder := make([]string, 0)
	sectorLeaves := make(map[string][]*leaf)
	leafIndex := make(map[string]*leaf)

	for _, r := range records {
		if r.MarketCapMUSD <= 0 {
			b.logger.Warn().
				Str("ticker", r.Ticker).
				Float64("market_cap", r.MarketCapMUSD).
				Msg("Excluding record with non-positive market cap from chart")
			continue
		}

		key := r.Sector + "/" + r.Ticker
		if existing, ok := leafIndex[key]; ok {
			existing.value += r.MarketCapMUSD
			if existing.category != r.Category {
				existing.unanimous = false
			}
			continue
		}

		l := &leaf{
			sector:    r.Sector,
			ticker:    r.Ticker,
			value:     r.MarketCapMUSD,
			category:  r.Category,
			returnStr: formatReturn(r.ReturnPct),
			unanimous: true,
		}
		leafIndex[key] = l

		if _, seen := sectorLeaves[r.Sector]; !seen {
			sectorOrder = append(sectorOrder, r.Sector)
		}
		sectorLeaves[r.Sector] = append(sectorLeaves[r.Sector], l)
	}

	spec := &models.ChartSpec{
		Type:          "treemap",
		HoverTemplate: hoverTemplate,
		TextTemplate:  textTemplate,
		BranchValues:  "total",
	}

	addNode := func(label, id, parent string, value float64, color string, custom [2]string) {
		spec.Labels = append(spec.Labels, label)
		spec.IDs = append(spec.IDs, id)
		spec.Parents = append(spec.Parents, parent)
		spec.Values = append(spec.Values, value)
		spec.Marker.Colors = append(spec.Marker.Colors, color)
		spec.CustomData = append(spec.CustomData, custom)
	}

	var total float64
	for _, sector := range sectorOrder {
		for _, l := range sectorLeaves[sector] {
			total += l.value
		}
	}
	addNode(RootLabel, RootLabel, "", total, NeutralColor, [2]string{"", ""})

	for _, sector := range sectorOrder {
		sectorID := RootLabel + "/" + sector
		var sectorTotal float64
		for _, l := range sectorLeaves[sector] {
			sectorTotal += l.value
		}
		addNode(sector, sectorID, RootLabel, sectorTotal, NeutralColor, [2]string{"", ""})

		for _, l := range sectorLeaves[sector] {
			category := l.category
			if !l.unanimous {
				category = models.CategoryUnclassified
			}
			addNode(l.ticker, sectorID+"/"+l.ticker, sectorID,
				l.value, categoryColors[category], [2]string{l.returnStr, l.sector})
		}
	}

	return spec
}

// formatReturn renders a return fraction for the hover and label
// templates. The NaN sentinel renders literally so unclassified leaves
// stay visibly distinct instead of faking a number.
func formatReturn(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

package models

// ChartSpec is a complete treemap trace in flat parallel-array form, shaped
// so the renderer can hand it to Plotly unchanged. Index i across Labels,
// IDs, Parents, Values, Marker.Colors and CustomData describes one node.
type ChartSpec struct {
	Type          string      `json:"type"`
	Labels        []string    `json:"labels"`
	IDs           []string    `json:"ids"`
	Parents       []string    `json:"parents"`
	Values        []float64   `json:"values"`
	Marker        ChartMarker `json:"marker"`
	CustomData    [][2]string `json:"customdata"`
	HoverTemplate string      `json:"hovertemplate"`
	TextTemplate  string      `json:"texttemplate"`
	BranchValues  string      `json:"branchvalues"`
}

// ChartMarker carries per-node colors, parallel to the node arrays
type ChartMarker struct {
	Colors []string `json:"colors"`
}

// NodeCount returns the number of nodes in the spec
func (c *ChartSpec) NodeCount() int {
	return len(c.IDs)
}

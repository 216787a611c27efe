package htmltable

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extract parses raw HTML and returns every <table> in document order.
// The first row of each table becomes its header. Returns an ExtractError
// when the HTML cannot be parsed or contains no tables at all.
func Extract(html string) ([]*Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractError{Reason: "unparseable HTML", Err: err}
	}

	var tables []*Table
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var rows [][]string
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})

		// Empty tables keep their position so later indexes stay aligned
		// with the page
		if len(rows) == 0 {
			tables = append(tables, newTable(nil, nil))
			return
		}
		tables = append(tables, newTable(rows[0], rows[1:]))
	})

	if len(tables) == 0 {
		return nil, &ExtractError{Reason: "no tables found"}
	}

	return tables, nil
}

// At selects a table by its fixed position on the page. An out-of-range
// index signals that the upstream page changed shape.
func At(tables []*Table, index int) (*Table, error) {
	if index < 0 || index >= len(tables) {
		return nil, &LayoutError{Index: index, Count: len(tables)}
	}
	return tables[index], nil
}

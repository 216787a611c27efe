// Package htmltable extracts <table> elements from raw HTML into an ordered
// sequence of positionally indexed tabular datasets with named-column access.
package htmltable

// Table is a minimal tabular view over one HTML table: a header row of
// column names plus string data rows. The first parsed row is the header.
type Table struct {
	headers []string
	columns map[string]int
	rows    [][]string
}

func newTable(headers []string, rows [][]string) *Table {
	columns := make(map[string]int, len(headers))
	for i, h := range headers {
		// First occurrence wins on duplicate header names
		if _, exists := columns[h]; !exists {
			columns[h] = i
		}
	}
	return &Table{headers: headers, columns: columns, rows: rows}
}

// Header returns the column names in page order
func (t *Table) Header() []string {
	return t.headers
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the cells of data row i
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// Column returns the position of the named column
func (t *Table) Column(name string) (int, bool) {
	idx, ok := t.columns[name]
	return idx, ok
}

// Cell returns the value at data row i in the named column. The second
// return is false when the column does not exist or the row is too short.
func (t *Table) Cell(i int, column string) (string, bool) {
	idx, ok := t.columns[column]
	if !ok {
		return "", false
	}
	if i < 0 || i >= len(t.rows) || idx >= len(t.rows[i]) {
		return "", false
	}
	return t.rows[i][idx], true
}

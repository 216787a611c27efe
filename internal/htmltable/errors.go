package htmltable

import "fmt"

// ExtractError reports HTML that yielded no usable tables
type ExtractError struct {
	Reason string
	Err    error
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("table extraction failed: %s: %v", e.Reason, e.Err)
	}
	return "table extraction failed: " + e.Reason
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// LayoutError means the page no longer matches the assumed layout: a
// positional table index is out of range, or a required column is gone.
// It is fatal for the run; there is nothing sensible to recover to.
type LayoutError struct {
	Index  int
	Count  int
	Column string
}

func (e *LayoutError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("page layout changed: column %q not found", e.Column)
	}
	return fmt.Sprintf("page layout changed: table index %d out of range (page has %d tables)", e.Index, e.Count)
}

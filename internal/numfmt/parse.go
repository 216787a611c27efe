// Package numfmt parses numeric strings in the Turkish convention used by
// the source page: "." as thousands separator, "," as decimal separator.
package numfmt

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a string that failed numeric normalization
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as a number: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse converts a Turkish-formatted numeric string to a float64.
// "1.234,56" parses to 1234.56: every "." is removed as a thousands
// separator, then "," becomes the decimal point. Dot-decimal input is
// therefore misread here on purpose; the source page never emits it.
func Parse(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &ParseError{Input: s, Err: err}
	}
	return v, nil
}

// ParsePercent converts a percentage string like "2,50%" to its numeric
// value (2.5). Only "%" characters are stripped and "," normalized; dots
// are kept, so plain "5.0" still parses as 5.
func ParsePercent(s string) (float64, error) {
	cleaned := strings.ReplaceAll(s, "%", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	cleaned = strings.TrimSpace(cleaned)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &ParseError{Input: s, Err: err}
	}
	return v, nil
}

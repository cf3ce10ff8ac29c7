// Package format renders flight pages for CLI output.
package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cristianoliveira/flightdeck/internal/domain"
)

// Formatter writes one page of flights.
type Formatter interface {
	FormatFlights(result domain.ListResult, writer io.Writer) error
}

// FormatterType names an output format.
type FormatterType string

const (
	// FormatterTypeTable is an aligned table with a pagination footer.
	FormatterTypeTable FormatterType = "table"
	// FormatterTypeJSON is the list result as JSON.
	FormatterTypeJSON FormatterType = "json"
)

// ParseFormatterType validates a --format value.
func ParseFormatterType(s string) (FormatterType, error) {
	switch FormatterType(s) {
	case FormatterTypeTable, FormatterTypeJSON:
		return FormatterType(s), nil
	}
	return "", fmt.Errorf("unknown format %q (want table or json)", s)
}

// NewFormatter returns the formatter for formatterType. Unknown types get a table.
func NewFormatter(formatterType FormatterType) Formatter {
	if formatterType == FormatterTypeJSON {
		return NewJSONFormatter()
	}
	return NewTableFormatter()
}

// JSONFormatter writes the result as indented JSON.
type JSONFormatter struct{}

// NewJSONFormatter returns a JSONFormatter.
func NewJSONFormatter() *JSONFormatter { return &JSONFormatter{} }

func (f *JSONFormatter) FormatFlights(result domain.ListResult, writer io.Writer) error {
	if result.Flights == nil {
		result.Flights = []domain.Flight{}
	}
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

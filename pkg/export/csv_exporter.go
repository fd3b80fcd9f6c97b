package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// ErrNoColumns is returned when a dataset has no headers to lay out.
var ErrNoColumns = errors.New("export: dataset has no columns")

// Dataset is a table to export. Rows are keyed by header; missing keys render empty.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// records flattens the dataset into header-ordered rows, header row first.
func (d Dataset) records(cell func(string) string) ([][]string, error) {
	if len(d.Headers) == 0 {
		return nil, ErrNoColumns
	}
	out := make([][]string, 0, len(d.Rows)+1)
	out = append(out, d.Headers)
	for _, row := range d.Rows {
		record := make([]string, len(d.Headers))
		for i, header := range d.Headers {
			record[i] = cell(row[header])
		}
		out = append(out, record)
	}
	return out, nil
}

// CSVExporter writes datasets as RFC 4180 CSV. Cells that a spreadsheet would evaluate as a
// formula are prefixed with a quote, since log details and contact fields come from visitors.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) ContentType() string {
	return "text/csv; charset=utf-8"
}

// Render encodes the dataset. The title is not part of CSV output.
func (e *CSVExporter) Render(data Dataset, _ string) ([]byte, error) {
	records, err := data.records(neutralizeFormula)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := csv.NewWriter(&buf).WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func neutralizeFormula(value string) string {
	if value != "" && strings.ContainsRune("=+-@\t\r", rune(value[0])) {
		return "'" + value
	}
	return value
}

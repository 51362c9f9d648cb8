package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docforge/internal/markdown"
)

// csvBatchSize is the number of data rows listed under each section heading.
const csvBatchSize = 20

// CSVParser handles CSV files. The first record names the columns; data
// rows are listed as "Header: value" items under a heading per batch.
type CSVParser struct {
	Engine markdown.Engine
}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Import, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return fromMarkdown(filename, "", p.Engine), nil
	}

	headers := records[0]
	dataRows := records[1:]

	var b strings.Builder
	b.WriteString("# " + escapeLine(Title(filename)) + "\n\n")
	b.WriteString("Columns: " + escapeLine(strings.Join(headers, ", ")) + "\n")

	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))
		// Row numbers are 1-indexed and count the header.
		fmt.Fprintf(&b, "\n## Rows %d-%d\n\n", i+2, end+1)
		for _, row := range dataRows[i:end] {
			b.WriteString("- " + escapeLine(csvRow(headers, row)) + "\n")
		}
	}

	return fromMarkdown(filename, b.String(), p.Engine), nil
}

func csvRow(headers, row []string) string {
	cells := make([]string, 0, len(row))
	for j, cell := range row {
		if j < len(headers) && headers[j] != "" {
			cells = append(cells, headers[j]+": "+cell)
		} else {
			cells = append(cells, cell)
		}
	}
	return strings.Join(cells, ", ")
}

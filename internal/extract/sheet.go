package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX renders every sheet as "Sheet: <name>" followed by one line per row
func extractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("xlsx open: %w", err)
	}
	defer f.Close()

	var out strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("xlsx sheet %s: %w", sheet, err)
		}
		writeSheet(&out, sheet, rows)
	}
	return strings.TrimSpace(out.String()), nil
}

// extractCSV renders a CSV file in the same shape as a one-sheet workbook
func extractCSV(data []byte, fileName string) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("csv parse: %w", err)
	}
	var out strings.Builder
	writeSheet(&out, fileName, rows)
	return strings.TrimSpace(out.String()), nil
}

func writeSheet(out *strings.Builder, name string, rows [][]string) {
	out.WriteString("Sheet: ")
	out.WriteString(name)
	out.WriteString("\n")
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) == 0 {
			continue
		}
		out.WriteString(strings.Join(cells, ", "))
		out.WriteString("\n")
	}
	out.WriteString("\n")
}

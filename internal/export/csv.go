// Package export renders visible price rows as downloadable tables.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/sanvivo/price-dashboard/internal/types"
)

// FilePrefix is the stem of every exported file name.
const FilePrefix = "sanvivo_prices"

// FormatCSV serializes records under header. It returns false when there is
// nothing to export.
//
// String values containing a comma are wrapped in double quotes. Embedded
// quotes are written as-is, so a value holding both a comma and a quote does
// not survive a strict RFC 4180 reader.
func FormatCSV(header []string, records [][]any) (string, bool) {
	if len(records) == 0 {
		return "", false
	}

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(header, ","))
	for _, record := range records {
		cells := make([]string, len(record))
		for i, v := range record {
			cells[i] = formatCell(v)
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n"), true
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		if strings.Contains(val, ",") {
			return `"` + val + `"`
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}

// PriceRowsCSV serializes rows with the declared PriceRow field list as header.
func PriceRowsCSV(rows []types.PriceRow) (string, bool) {
	return FormatCSV(types.PriceRowFields, records(rows))
}

// FileName builds "<prefix>_YYYY-MM-DD.<ext>" for the calendar day of now.
func FileName(prefix string, now time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("2006-01-02"), strings.TrimPrefix(ext, "."))
}

func records(rows []types.PriceRow) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = row.Values()
	}
	return out
}

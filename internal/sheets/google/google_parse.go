package google

import (
	"fmt"
	"strings"

	ports "moneypaz/internal/sheets"
)

// parseRows converts a values matrix (as returned by the Sheets API) into
// rows, skipping anything that is not a movement.
func parseRows(values [][]any) []ports.Row {
	out := make([]ports.Row, 0, len(values))
	for _, raw := range values {
		cells := toStrings(raw)
		if len(cells) == 0 || cells[0] == "" || strings.EqualFold(cells[0], ports.Header[0]) {
			continue
		}
		row, err := ports.ParseRow(cells)
		if err != nil {
			continue
		}
		out = append(out, row)
	}
	return out
}

// findRow returns the 1-based sheet row holding id, or 0.
func findRow(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i + 1
		}
	}
	return 0
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

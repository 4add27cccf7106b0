package parsers

import (
	"strings"

	"github.com/username/gstfolio/src/models"
)

// HeaderNotFound is returned by FindHeaderRow when no row qualifies.
const HeaderNotFound = -1

var dateHeaderAliases = []string{"date", "transaction date"}

// FindHeaderRow returns the index of the first row holding a date column and
// either an amount column or one of the bank's description columns. Banks
// often prepend account summary rows, so row 0 cannot be assumed.
func FindHeaderRow(rows []models.RawRow, f models.BankFormat) int {
	amountAliases := []string{"amount", strings.ToLower(f.AmountField)}
	descAliases := make([]string, len(f.DescriptionFields))
	for i, d := range f.DescriptionFields {
		descAliases[i] = strings.ToLower(d)
	}

	for i, row := range rows {
		cells := make(map[string]bool, len(row))
		for _, c := range row {
			cells[strings.ToLower(strings.TrimSpace(c))] = true
		}
		if containsAny(cells, dateHeaderAliases) &&
			(containsAny(cells, amountAliases) || containsAny(cells, descAliases)) {
			return i
		}
	}
	return HeaderNotFound
}

func containsAny(cells map[string]bool, aliases []string) bool {
	for _, a := range aliases {
		if a != "" && cells[a] {
			return true
		}
	}
	return false
}

func headerHint(f models.BankFormat) string {
	return "Please ensure the file contains columns like 'Date' and '" + f.AmountField + "'"
}

package parsers

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/utils"
)

var (
	genericAmountAliases = []string{"Amount"}
	genericDateAliases   = []string{"Date", "Transaction Date"}
	genericPayeeAliases  = []string{"Payee", "Other Party"}
	genericMemoAliases   = []string{"Memo", "Particulars", "Details"}
)

// fieldLookup maps lower-cased, trimmed header names to the row's cells.
// A header name that repeats takes the cell of its last column.
type fieldLookup map[string]string

func newFieldLookup(header, row models.RawRow) fieldLookup {
	f := make(fieldLookup, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || i >= len(row) {
			continue
		}
		f[key] = strings.TrimSpace(row[i])
	}
	return f
}

// first returns the first non-empty value among the aliases, in order.
func (f fieldLookup) first(aliases ...[]string) string {
	for _, group := range aliases {
		for _, a := range group {
			if v := f[strings.ToLower(a)]; v != "" {
				return v
			}
		}
	}
	return ""
}

// ParseAmount parses a bank amount cell, dropping thousands separators.
// ok is false for unparseable or zero amounts; such rows are excluded.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}
	return d, true
}

// NormalizeRows turns the data rows beneath a detected header into
// transactions. Rows without a usable amount are skipped silently; bad dates
// fall back to now.
func NormalizeRows(fileName string, header models.RawRow, rows []models.RawRow, f models.BankFormat, now time.Time) []models.Transaction {
	amountAliases := []string{f.AmountField}
	txs := make([]models.Transaction, 0, len(rows))
	for i, row := range rows {
		fields := newFieldLookup(header, row)
		amount, ok := ParseAmount(fields.first(amountAliases, genericAmountAliases))
		if !ok {
			continue
		}
		txs = append(txs, models.Transaction{
			ID:          TransactionID(fileName, i),
			Date:        utils.NormalizeDate(fields.first(genericDateAliases), now),
			Payee:       fields.first(f.DescriptionFields, genericPayeeAliases),
			Description: fields.first(genericMemoAliases),
			Amount:      amount,
		})
	}
	return txs
}

// TransactionID is unique within a batch as long as file names are.
func TransactionID(fileName string, rowIndex int) string {
	return fmt.Sprintf("%s-%d", fileName, rowIndex)
}

package parsers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/username/gstfolio/src/models"
)

var ErrUnknownBank = errors.New("unknown bank")

// bankOrder is the order banks are offered to users.
var bankOrder = []string{"ASB", "BNZ", "Westpac", "Kiwibank", "ANZ"}

var bankFormats = map[string]models.BankFormat{
	"ASB": {
		Name:              "ASB",
		Identifiers:       []string{"Payee", "Memo", "Amount"},
		DescriptionFields: []string{"Payee", "Memo"},
		AmountField:       "Amount",
		DateFormat:        "DD/MM/YYYY",
	},
	"BNZ": {
		Name:              "BNZ",
		Identifiers:       []string{"Code"},
		DescriptionFields: []string{"Code"},
		AmountField:       "Amount",
		DateFormat:        "DD/MM/YYYY",
	},
	"Westpac": {
		Name:              "Westpac",
		Identifiers:       []string{"Other Party"},
		DescriptionFields: []string{"Other Party"},
		AmountField:       "Amount",
		DateFormat:        "DD/MM/YYYY",
	},
	"Kiwibank": {
		Name:              "Kiwibank",
		Identifiers:       []string{"Description", "Particulars", "Other Party"},
		DescriptionFields: []string{"Description", "Particulars", "Other Party"},
		AmountField:       "Amount",
		DateFormat:        "DD/MM/YYYY",
	},
	"ANZ": {
		Name:              "ANZ",
		Identifiers:       []string{"Details", "Description", "Particulars"},
		DescriptionFields: []string{"Details", "Description", "Particulars"},
		AmountField:       "Amount",
		DateFormat:        "DD/MM/YYYY",
	},
}

// GetBankFormat looks a bank up by name, ignoring case and surrounding space.
// The returned format shares no slices with the registry.
func GetBankFormat(name string) (models.BankFormat, error) {
	want := strings.TrimSpace(name)
	for _, key := range bankOrder {
		if strings.EqualFold(key, want) {
			return cloneFormat(bankFormats[key]), nil
		}
	}
	return models.BankFormat{}, fmt.Errorf("%w: %q", ErrUnknownBank, name)
}

// BankNames lists the supported banks in display order.
func BankNames() []string {
	out := make([]string, len(bankOrder))
	copy(out, bankOrder)
	return out
}

// BankFormats returns every supported format in display order.
func BankFormats() []models.BankFormat {
	out := make([]models.BankFormat, 0, len(bankOrder))
	for _, key := range bankOrder {
		out = append(out, cloneFormat(bankFormats[key]))
	}
	return out
}

func cloneFormat(f models.BankFormat) models.BankFormat {
	f.Identifiers = append([]string(nil), f.Identifiers...)
	f.DescriptionFields = append([]string(nil), f.DescriptionFields...)
	return f
}

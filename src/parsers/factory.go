package parsers

import "time"

// GetParser returns the parser for a bank name.
func GetParser(bank string, now func() time.Time) (Parser, error) {
	format, err := GetBankFormat(bank)
	if err != nil {
		return nil, err
	}
	return NewBankCSVParser(format, now), nil
}

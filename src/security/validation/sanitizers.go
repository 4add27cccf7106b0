package validation

import (
	"strings"
	"unicode"
)

// SanitizeForFormulaInjection guards an exported CSV cell. Payees and memos
// come straight from bank files, so a cell that a spreadsheet would evaluate
// (leading =, +, -, @ or a control character) is quoted as text.
func SanitizeForFormulaInjection(cell string) string {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return cell
	}
	if strings.ContainsRune("=+-@\t\r", rune(trimmed[0])) {
		return "'" + cell
	}
	return cell
}

// StripUnprintable drops control bytes some bank exports leave in payee
// fields. Tabs and line breaks survive.
func StripUnprintable(cell string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r':
			return r
		case unicode.IsPrint(r):
			return r
		}
		return -1
	}, cell)
}

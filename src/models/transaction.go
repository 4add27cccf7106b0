package models

import "github.com/shopspring/decimal"

// Transaction is a normalized bank statement line.
// Amount is signed: positive for sales/income, negative for purchases/expenses.
// A materialized Transaction never carries a zero amount.
type Transaction struct {
	ID          string          `json:"id"`          // <filename>-<row index>, unique within a batch
	Date        string          `json:"date"`        // YYYY-MM-DD
	Payee       string          `json:"payee"`       // may be empty
	Description string          `json:"description"` // secondary memo field, may be empty
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category,omitempty"` // empty until classified
}

// CostedTransaction is a classified transaction enriched with the GST figures
// derived from the active account table. These fields are never stored.
type CostedTransaction struct {
	Transaction
	GSTRatio  decimal.Decimal `json:"gstRatio"`
	GSTAmount decimal.Decimal `json:"gstAmount"`
	Code      string          `json:"code"`
}

// TransactionReportRow is one formatted line of the transaction report export.
type TransactionReportRow struct {
	Date      string
	Payee     string
	Category  string
	Code      string
	Amount    string
	GSTRatio  string // e.g. "25%"
	GSTAmount string
}

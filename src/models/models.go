package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategorySummary aggregates every transaction of one category in a batch.
type CategorySummary struct {
	CategoryName string          `json:"categoryName"`
	Code         string          `json:"code"`
	SignedTotal  decimal.Decimal `json:"-"`           // sign decides sales vs expenses
	TotalAmount  decimal.Decimal `json:"totalAmount"` // absolute value of the signed sum
	GSTRatio     decimal.Decimal `json:"gstRatio"`
	ActualAmount decimal.Decimal `json:"actualAmount"` // business-claimable portion
	GSTAmount    decimal.Decimal `json:"gstAmount"`
}

// SummaryTotals are the running totals of a summary table.
type SummaryTotals struct {
	Total  decimal.Decimal `json:"total"`
	Actual decimal.Decimal `json:"actual"`
	GST    decimal.Decimal `json:"gst"`
}

// SummaryTable is either the Sales or the Expenses table.
type SummaryTable struct {
	Items  []CategorySummary `json:"items"`
	Totals SummaryTotals     `json:"totals"`
}

// SalesExpensesSummary holds the two independent summary tables.
type SalesExpensesSummary struct {
	Sales    SummaryTable `json:"sales"`
	Expenses SummaryTable `json:"expenses"`
}

const (
	GSTToPay    = "GST to Pay"
	GSTToRefund = "GST to Refund"
)

// GSTReturn is the return summary derived from the full transaction set.
type GSTReturn struct {
	TotalSales        decimal.Decimal `json:"totalSales"`
	ZeroRatedSales    decimal.Decimal `json:"zeroRatedSales"`
	NetGSTSales       decimal.Decimal `json:"netGstSales"`
	GSTCollected      decimal.Decimal `json:"gstCollected"`
	AdjustedPurchases decimal.Decimal `json:"adjustedPurchases"`
	GSTPaid           decimal.Decimal `json:"gstPaid"`
	GSTDifference     decimal.Decimal `json:"gstDifference"`
	Label             string          `json:"label"`         // GSTToPay or GSTToRefund
	DisplayAmount     decimal.Decimal `json:"displayAmount"` // |GSTDifference|
}

// JournalEntry is one double-entry line. Exactly one of Debit/Credit is
// non-zero, except for empty categories.
type JournalEntry struct {
	Account string          `json:"account"`
	Code    string          `json:"code"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
}

// Journal is the balanced export: sorted category entries, the optional
// Drawings balancing line (already appended to Entries) and the totals.
type Journal struct {
	Entries     []JournalEntry  `json:"entries"`
	Balancing   *JournalEntry   `json:"balancing,omitempty"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// JournalRow is the formatted CSV form of a journal line. Blank cells mean n/a.
type JournalRow struct {
	Account string
	Code    string
	Debit   string
	Credit  string
}

// UploadRecord is kept per processed batch in the account's upload history.
type UploadRecord struct {
	ID                string    `json:"id" db:"id"`
	Timestamp         time.Time `json:"timestamp" db:"created_at"`
	FileNames         []string  `json:"fileNames" db:"-"`
	Bank              string    `json:"bank" db:"bank"`
	TotalTransactions int       `json:"totalTransactions" db:"total_transactions"`
}

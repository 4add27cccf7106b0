package processors

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/utils"
)

// balanceTolerance is the gap below which the journal counts as balanced.
var balanceTolerance = decimal.RequireFromString("0.01")

type journalProcessorImpl struct{}

func NewJournalProcessor() JournalProcessor {
	return &journalProcessorImpl{}
}

// Build books each category at its GST-exclusive value: credits for income,
// debits for expenses. When the two sides differ by more than a cent a
// Drawings line closes the gap and is appended after the sorted entries.
func (p *journalProcessorImpl) Build(summary models.SalesExpensesSummary) models.Journal {
	groups := make([]models.CategorySummary, 0, len(summary.Sales.Items)+len(summary.Expenses.Items))
	groups = append(groups, summary.Sales.Items...)
	groups = append(groups, summary.Expenses.Items...)

	j := models.Journal{Entries: []models.JournalEntry{}, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, g := range groups {
		amount := ExclusiveAmount(g.TotalAmount, g.GSTRatio)
		entry := models.JournalEntry{Account: g.CategoryName, Code: g.Code, Debit: decimal.Zero, Credit: decimal.Zero}
		if g.SignedTotal.IsPositive() {
			entry.Credit = amount
			j.TotalCredit = j.TotalCredit.Add(amount)
		} else {
			entry.Debit = amount
			j.TotalDebit = j.TotalDebit.Add(amount)
		}
		j.Entries = append(j.Entries, entry)
	}

	sortJournalEntries(j.Entries)

	diff := j.TotalCredit.Sub(j.TotalDebit)
	if diff.Abs().GreaterThan(balanceTolerance) {
		drawings := models.JournalEntry{
			Account: models.CategoryDrawings,
			Code:    models.DrawingsCode,
			Debit:   decimal.Zero,
			Credit:  decimal.Zero,
		}
		if diff.IsPositive() {
			drawings.Debit = diff
			j.TotalDebit = j.TotalDebit.Add(diff)
		} else {
			drawings.Credit = diff.Abs()
			j.TotalCredit = j.TotalCredit.Add(diff.Abs())
		}
		j.Entries = append(j.Entries, drawings)
		j.Balancing = &drawings
	}
	return j
}

// ExclusiveAmount is the GST-exclusive journal value of a category total.
// Ratio 0 categories carry no GST and are booked in full.
func ExclusiveAmount(total, ratio decimal.Decimal) decimal.Decimal {
	if ratio.IsZero() {
		return total.Abs()
	}
	actual, gst := CategoryGST(total, ratio)
	return actual.Sub(gst)
}

// sortJournalEntries puts credit rows before debit rows, each by code.
func sortJournalEntries(entries []models.JournalEntry) {
	cmp := utils.NewCodeComparer()
	sort.SliceStable(entries, func(i, j int) bool {
		ci, cj := entries[i].Credit.IsPositive(), entries[j].Credit.IsPositive()
		if ci != cj {
			return ci
		}
		return cmp.Compare(entries[i].Code, entries[j].Code) < 0
	})
}

// FormatJournalRows renders the journal for export with a trailing Total row.
// Zero cells are left blank.
func FormatJournalRows(j models.Journal) []models.JournalRow {
	rows := make([]models.JournalRow, 0, len(j.Entries)+1)
	for _, e := range j.Entries {
		rows = append(rows, models.JournalRow{
			Account: e.Account,
			Code:    e.Code,
			Debit:   blankIfZero(e.Debit),
			Credit:  blankIfZero(e.Credit),
		})
	}
	rows = append(rows, models.JournalRow{
		Account: "Total",
		Debit:   utils.FormatMoney(j.TotalDebit),
		Credit:  utils.FormatMoney(j.TotalCredit),
	})
	return rows
}

func blankIfZero(d decimal.Decimal) string {
	if !d.IsPositive() {
		return ""
	}
	return utils.FormatMoney(d)
}

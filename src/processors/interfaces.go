package processors

import (
	"github.com/username/gstfolio/src/models"
)

// Classifier assigns a category to each transaction.
type Classifier interface {
	Classify(tx models.Transaction, mapping models.PayeeMapping) string
	ClassifyAll(txs []models.Transaction, mapping models.PayeeMapping) []models.Transaction
}

// SummaryProcessor groups costed transactions into the Sales and Expenses tables.
type SummaryProcessor interface {
	Summarize(costed []models.CostedTransaction) models.SalesExpensesSummary
}

// GSTReturnProcessor derives the GST return from the full transaction set.
type GSTReturnProcessor interface {
	Calculate(costed []models.CostedTransaction) models.GSTReturn
}

// JournalProcessor builds the balanced double-entry export.
type JournalProcessor interface {
	Build(summary models.SalesExpensesSummary) models.Journal
}

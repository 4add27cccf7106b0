package processors

import (
	"sort"

	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/utils"
)

// SortByCode orders costed transactions by account code, empty codes last.
// Ties keep their input order.
func SortByCode(costed []models.CostedTransaction) []models.CostedTransaction {
	out := make([]models.CostedTransaction, len(costed))
	copy(out, costed)
	cmp := utils.NewCodeComparer()
	sort.SliceStable(out, func(i, j int) bool {
		return cmp.Compare(out[i].Code, out[j].Code) < 0
	})
	return out
}

// BuildTransactionReport formats one row per transaction for the report export.
func BuildTransactionReport(costed []models.CostedTransaction) []models.TransactionReportRow {
	sorted := SortByCode(costed)
	rows := make([]models.TransactionReportRow, len(sorted))
	for i, tx := range sorted {
		rows[i] = models.TransactionReportRow{
			Date:      tx.Date,
			Payee:     tx.Payee,
			Category:  tx.Category,
			Code:      tx.Code,
			Amount:    utils.FormatMoney(tx.Amount),
			GSTRatio:  utils.FormatPercent(tx.GSTRatio),
			GSTAmount: utils.FormatMoney(tx.GSTAmount),
		}
	}
	return rows
}

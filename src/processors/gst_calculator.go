package processors

import (
	"github.com/shopspring/decimal"
	"github.com/username/gstfolio/src/models"
)

// NZ GST is 15% charged on top, so the tax inside an inclusive amount is 3/23.
var (
	gstNumerator   = decimal.NewFromInt(3)
	gstDenominator = decimal.NewFromInt(23)
)

// gstComponent returns inclusive × 3/23 with a single division.
func gstComponent(inclusive decimal.Decimal) decimal.Decimal {
	return inclusive.Mul(gstNumerator).Div(gstDenominator)
}

// TransactionGST is the claimable GST of a single transaction:
// |amount| × 3/23 × ratio.
func TransactionGST(amount, ratio decimal.Decimal) decimal.Decimal {
	if ratio.IsZero() {
		return decimal.Zero
	}
	return gstComponent(amount.Abs().Mul(ratio))
}

// CategoryGST returns the business-claimable portion of a category total and
// the GST inside that portion.
func CategoryGST(total, ratio decimal.Decimal) (actual, gst decimal.Decimal) {
	actual = total.Abs().Mul(ratio)
	if ratio.IsZero() {
		return actual, decimal.Zero
	}
	return actual, gstComponent(actual)
}

// Cost resolves each transaction's category against the account table and
// derives its GST. A category missing from the table costs at ratio 0.
func Cost(txs []models.Transaction, table models.AccountTable) []models.CostedTransaction {
	out := make([]models.CostedTransaction, len(txs))
	for i, tx := range txs {
		ratio, code := table.Resolve(tx.Category)
		out[i] = models.CostedTransaction{
			Transaction: tx,
			GSTRatio:    ratio,
			GSTAmount:   TransactionGST(tx.Amount, ratio),
			Code:        code,
		}
	}
	return out
}

package processors

import (
	"github.com/shopspring/decimal"
	"github.com/username/gstfolio/src/models"
)

type gstReturnProcessorImpl struct{}

func NewGSTReturnProcessor() GSTReturnProcessor {
	return &gstReturnProcessorImpl{}
}

// Calculate works from individual transactions rather than the grouped
// summaries so nothing is rounded twice.
func (p *gstReturnProcessorImpl) Calculate(costed []models.CostedTransaction) models.GSTReturn {
	r := models.GSTReturn{
		TotalSales:        decimal.Zero,
		ZeroRatedSales:    decimal.Zero,
		GSTCollected:      decimal.Zero,
		AdjustedPurchases: decimal.Zero,
		GSTPaid:           decimal.Zero,
	}

	for _, tx := range costed {
		switch {
		case tx.Amount.IsPositive():
			if tx.Category != models.CategoryTransfers {
				r.TotalSales = r.TotalSales.Add(tx.Amount)
			}
			if tx.Category == models.CategorySalesZeroRated {
				r.ZeroRatedSales = r.ZeroRatedSales.Add(tx.Amount)
			}
			r.GSTCollected = r.GSTCollected.Add(tx.GSTAmount)
		case tx.Amount.IsNegative():
			r.AdjustedPurchases = r.AdjustedPurchases.Add(tx.Amount.Abs().Mul(tx.GSTRatio))
			r.GSTPaid = r.GSTPaid.Add(tx.GSTAmount)
		}
	}

	r.NetGSTSales = r.TotalSales.Sub(r.ZeroRatedSales)
	r.GSTDifference = r.GSTCollected.Sub(r.GSTPaid)
	r.DisplayAmount = r.GSTDifference.Abs()
	if r.GSTDifference.IsNegative() {
		r.Label = models.GSTToRefund
	} else {
		r.Label = models.GSTToPay
	}
	return r
}

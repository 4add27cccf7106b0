package processors

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/utils"
)

type summaryProcessorImpl struct{}

func NewSummaryProcessor() SummaryProcessor {
	return &summaryProcessorImpl{}
}

// Summarize groups by category. The sign of a group's net sum decides
// whether it lands in Sales (> 0) or Expenses.
func (p *summaryProcessorImpl) Summarize(costed []models.CostedTransaction) models.SalesExpensesSummary {
	groups := groupByCategory(costed)

	var result models.SalesExpensesSummary
	for _, g := range groups {
		if g.SignedTotal.IsPositive() {
			result.Sales.Items = append(result.Sales.Items, g)
		} else {
			result.Expenses.Items = append(result.Expenses.Items, g)
		}
	}
	result.Sales = finishTable(result.Sales.Items)
	result.Expenses = finishTable(result.Expenses.Items)
	return result
}

// groupByCategory keeps groups in first-seen order.
func groupByCategory(costed []models.CostedTransaction) []models.CategorySummary {
	index := make(map[string]int)
	var groups []models.CategorySummary
	for _, tx := range costed {
		i, ok := index[tx.Category]
		if !ok {
			i = len(groups)
			index[tx.Category] = i
			groups = append(groups, models.CategorySummary{
				CategoryName: tx.Category,
				Code:         tx.Code,
				GSTRatio:     tx.GSTRatio,
			})
		}
		groups[i].SignedTotal = groups[i].SignedTotal.Add(tx.Amount)
	}
	for i := range groups {
		g := &groups[i]
		g.TotalAmount = g.SignedTotal.Abs()
		g.ActualAmount, g.GSTAmount = CategoryGST(g.TotalAmount, g.GSTRatio)
	}
	return groups
}

func finishTable(items []models.CategorySummary) models.SummaryTable {
	sortSummariesByCode(items)
	totals := models.SummaryTotals{Total: decimal.Zero, Actual: decimal.Zero, GST: decimal.Zero}
	for _, it := range items {
		totals.Total = totals.Total.Add(it.TotalAmount)
		totals.Actual = totals.Actual.Add(it.ActualAmount)
		totals.GST = totals.GST.Add(it.GSTAmount)
	}
	if items == nil {
		items = []models.CategorySummary{}
	}
	return models.SummaryTable{Items: items, Totals: totals}
}

func sortSummariesByCode(items []models.CategorySummary) {
	cmp := utils.NewCodeComparer()
	sort.SliceStable(items, func(i, j int) bool {
		return cmp.Compare(items[i].Code, items[j].Code) < 0
	})
}

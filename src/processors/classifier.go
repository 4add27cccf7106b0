package processors

import (
	"strings"

	"github.com/username/gstfolio/src/models"
)

// KeywordRule maps any keyword found in a transaction's text to Category.
type KeywordRule struct {
	Category string
	Keywords []string
}

// DefaultKeywordRules is evaluated in slice order; the first rule with a
// matching keyword wins. The zero-rated rule only applies to income.
var DefaultKeywordRules = []KeywordRule{
	{Category: models.CategorySalesZeroRated, Keywords: []string{"EXPORT", "GST-FREE", "ZERO-RATED"}},
	{Category: "Purchases", Keywords: []string{"COUNTDOWN", "PAKNSAVE", "NEW WORLD", "BUNNINGS", "MITRE 10", "WAREHOUSE STATIONERY", "SPARK", "VODAFONE", "2DEGREES"}},
	{Category: "Entertainment", Keywords: []string{"RESTAURANT", "CAFE", "BAR", "UBER EATS", "DELIVEREASY", "MENULOG"}},
	{Category: "Motor Vehicle Expenses", Keywords: []string{"Z ENERGY", "BP", "MOBIL", "CALTEX", "GULL", "AA", "VTNZ", "CAR PARTS", "REPCO"}},
	{Category: models.CategoryTransfers, Keywords: []string{"TRANSFER", "TFR", "INTERNET BANKING", "AUTOMATIC PAYMENT", "DIRECT DEBIT", "CREDIT CARD PAYMENT"}},
}

type keywordClassifier struct {
	zeroRated []string
	expense   []KeywordRule
}

// NewClassifier builds a classifier over rules. A rule for
// "Sales - Zero Rated" is used for income only.
func NewClassifier(rules []KeywordRule) Classifier {
	c := &keywordClassifier{}
	for _, r := range rules {
		if r.Category == models.CategorySalesZeroRated {
			c.zeroRated = append(c.zeroRated, r.Keywords...)
			continue
		}
		c.expense = append(c.expense, r)
	}
	return c
}

func (c *keywordClassifier) Classify(tx models.Transaction, mapping models.PayeeMapping) string {
	if category, ok := mapping.Lookup(tx.Payee); ok {
		return category
	}

	text := strings.ToUpper(tx.Payee + " " + tx.Description)
	if tx.Amount.IsPositive() {
		if containsKeyword(text, c.zeroRated) {
			return models.CategorySalesZeroRated
		}
		return models.CategorySales
	}

	for _, rule := range c.expense {
		if containsKeyword(text, rule.Keywords) {
			return rule.Category
		}
	}
	return models.CategoryUncategorized
}

// ClassifyAll returns copies of txs with Category set.
func (c *keywordClassifier) ClassifyAll(txs []models.Transaction, mapping models.PayeeMapping) []models.Transaction {
	out := make([]models.Transaction, len(txs))
	for i, tx := range txs {
		tx.Category = c.Classify(tx, mapping)
		out[i] = tx
	}
	return out
}

func containsKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Learn records a manual re-categorization. It returns the new mapping and
// whether anything changed; mapping itself is never modified. Transactions
// without a payee are not learned.
func Learn(mapping models.PayeeMapping, tx models.Transaction, newCategory string) (models.PayeeMapping, bool) {
	if newCategory == tx.Category || models.NormalizePayee(tx.Payee) == "" {
		return mapping, false
	}
	if current, ok := mapping.Lookup(tx.Payee); ok && current == newCategory {
		return mapping, false
	}
	return mapping.With(tx.Payee, newCategory), true
}

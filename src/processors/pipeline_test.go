package processors

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/parsers"
)

func TestPipeline_EndToEnd(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	p, err := parsers.GetParser("ANZ", now)
	require.NoError(t, err)

	txs, err := p.Parse("jan.csv", strings.NewReader("Date,Payee,Amount\n31/01/2024,BP,-57.50\n01/02/2024,Customer X,230.00\n"))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	classified := NewClassifier(DefaultKeywordRules).ClassifyAll(txs, models.PayeeMapping{})
	costed := Cost(classified, models.DefaultAccountTable())

	assert.Equal(t, "2024-01-31", costed[0].Date)
	assert.Equal(t, "Motor Vehicle Expenses", costed[0].Category)
	assertDecimal(t, "1.875", costed[0].GSTAmount)
	assert.Equal(t, "2024-02-01", costed[1].Date)
	assert.Equal(t, models.CategorySales, costed[1].Category)
	assertDecimal(t, "30", costed[1].GSTAmount)

	r := NewGSTReturnProcessor().Calculate(costed)
	assertDecimal(t, "30", r.GSTCollected)
	assertDecimal(t, "1.875", r.GSTPaid)
	assertDecimal(t, "28.125", r.GSTDifference)
	assert.Equal(t, models.GSTToPay, r.Label)

	j := NewJournalProcessor().Build(NewSummaryProcessor().Summarize(costed))
	assert.True(t, j.TotalDebit.Equal(j.TotalCredit))
}

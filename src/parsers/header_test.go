package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/gstfolio/src/models"
)

func TestFindHeaderRow(t *testing.T) {
	anz, err := GetBankFormat("ANZ")
	require.NoError(t, err)

	tests := []struct {
		name string
		rows []models.RawRow
		want int
	}{
		{
			name: "header on first row",
			rows: []models.RawRow{{"Date", "Payee", "Amount"}, {"31/01/2024", "BP", "-57.50"}},
			want: 0,
		},
		{
			name: "metadata rows before header",
			rows: []models.RawRow{
				{"Account", "01-0123-0456789-00"},
				{"Balance", "1,234.00"},
				{" Transaction Date ", "Details", "AMOUNT"},
				{"31/01/2024", "BP", "-57.50"},
			},
			want: 2,
		},
		{
			name: "date with description alias only",
			rows: []models.RawRow{{"Summary"}, {"date", "particulars"}},
			want: 1,
		},
		{
			name: "date column alone is not a header",
			rows: []models.RawRow{{"Date", "Balance"}, {"01/01/2024", "10"}},
			want: HeaderNotFound,
		},
		{
			name: "amount without date is not a header",
			rows: []models.RawRow{{"Payee", "Amount"}},
			want: HeaderNotFound,
		},
		{
			name: "empty input",
			rows: nil,
			want: HeaderNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindHeaderRow(tt.rows, anz))
		})
	}
}

func TestFindHeaderRow_ReturnsFirstQualifyingRow(t *testing.T) {
	asb, err := GetBankFormat("asb")
	require.NoError(t, err)

	rows := []models.RawRow{
		{"Bank statement"},
		{"Date", "Payee", "Memo", "Amount"},
		{"Date", "Amount"},
	}
	assert.Equal(t, 1, FindHeaderRow(rows, asb))
}

func TestGetBankFormat(t *testing.T) {
	f, err := GetBankFormat(" kiwibank ")
	require.NoError(t, err)
	assert.Equal(t, "Kiwibank", f.Name)
	assert.Equal(t, []string{"Description", "Particulars", "Other Party"}, f.DescriptionFields)

	f.DescriptionFields[0] = "mutated"
	again, _ := GetBankFormat("Kiwibank")
	assert.Equal(t, "Description", again.DescriptionFields[0])

	_, err = GetBankFormat("Monzo")
	assert.ErrorIs(t, err, ErrUnknownBank)

	assert.Equal(t, []string{"ASB", "BNZ", "Westpac", "Kiwibank", "ANZ"}, BankNames())
}

func TestBankFormats(t *testing.T) {
	formats := BankFormats()
	require.Len(t, formats, 5)
	assert.Equal(t, "ASB", formats[0].Name)
	assert.Equal(t, []string{"Payee", "Memo", "Amount"}, formats[0].Identifiers)
	assert.Equal(t, []string{"Code"}, formats[1].Identifiers)
	for _, f := range formats {
		assert.Equal(t, "DD/MM/YYYY", f.DateFormat, f.Name)
		assert.Equal(t, "Amount", f.AmountField, f.Name)
	}

	formats[0].Identifiers[0] = "mutated"
	assert.Equal(t, "Payee", BankFormats()[0].Identifiers[0])
}

package processors

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/security/validation"
)

var (
	reportHeader  = []string{"Date", "Payee", "Category", "Code", "Amount", "GST Ratio", "GST Amount"}
	journalHeader = []string{"Account", "Code", "Debit", "Credit"}

	unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// text cleans a user-controlled cell before it reaches a spreadsheet.
func text(s string) string {
	return validation.SanitizeForFormulaInjection(validation.StripUnprintable(s))
}

// WriteTransactionReport writes the report rows as CSV.
func WriteTransactionReport(w io.Writer, rows []models.TransactionReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, r := range rows {
		record := []string{r.Date, text(r.Payee), text(r.Category), text(r.Code), r.Amount, r.GSTRatio, r.GSTAmount}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJournal writes the formatted journal rows as CSV.
func WriteJournal(w io.Writer, rows []models.JournalRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(journalHeader); err != nil {
		return fmt.Errorf("failed to write journal header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{text(r.Account), text(r.Code), r.Debit, r.Credit}); err != nil {
			return fmt.Errorf("failed to write journal row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SafeFileName lower-cases name and replaces anything not alphanumeric with '_'.
func SafeFileName(name string) string {
	return strings.ToLower(unsafeFileChars.ReplaceAllString(name, "_"))
}

func ReportFileName(clientName string, now time.Time) string {
	return fmt.Sprintf("%s_gst_report_%s.csv", SafeFileName(clientName), now.Format("2006-01-02_15-04"))
}

func JournalFileName(clientName string, now time.Time) string {
	return fmt.Sprintf("%s_journal_%s.csv", SafeFileName(clientName), now.Format("20060102"))
}

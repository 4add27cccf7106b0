package parsers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/username/gstfolio/src/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser turns one decoded bank export into transactions.
type Parser interface {
	Parse(fileName string, file io.Reader) ([]models.Transaction, error)
}

// BankCSVParser parses CSV exports for a single bank format.
type BankCSVParser struct {
	format models.BankFormat
	now    func() time.Time
}

func NewBankCSVParser(format models.BankFormat, now func() time.Time) *BankCSVParser {
	if now == nil {
		now = time.Now
	}
	return &BankCSVParser{format: format, now: now}
}

func (p *BankCSVParser) Parse(fileName string, file io.Reader) ([]models.Transaction, error) {
	rows, err := DecodeCSV(file)
	if err != nil {
		return nil, &FormatError{FileName: fileName, Reason: "file is not valid CSV", Err: err}
	}

	headerIdx := FindHeaderRow(rows, p.format)
	if headerIdx == HeaderNotFound {
		return nil, &FormatError{
			FileName: fileName,
			Reason:   ErrHeaderNotFound.Error(),
			Hint:     headerHint(p.format),
			Err:      ErrHeaderNotFound,
		}
	}

	header := rows[headerIdx]
	return NormalizeRows(fileName, header, rows[headerIdx+1:], p.format, p.now()), nil
}

// DecodeCSV reads every record of a CSV file. Rows may have differing
// widths; blank lines are dropped and a leading UTF-8 BOM is ignored.
func DecodeCSV(file io.Reader) ([]models.RawRow, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read all CSV records: %w", err)
	}

	rows := make([]models.RawRow, 0, len(records))
	for _, record := range records {
		if isBlankRecord(record) {
			continue
		}
		rows = append(rows, models.RawRow(record))
	}
	return rows, nil
}

func isBlankRecord(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParseFile checks the file type, resolves the bank and parses the bytes.
func ParseFile(in models.FileInput, now func() time.Time) ([]models.Transaction, error) {
	if !strings.EqualFold(filepath.Ext(in.Name), ".csv") {
		return nil, &FormatError{
			FileName: in.Name,
			Reason:   fmt.Sprintf("%s: %s", ErrUnsupportedFileType.Error(), in.Name),
			Hint:     "Please upload a CSV file",
			Err:      ErrUnsupportedFileType,
		}
	}
	p, err := GetParser(in.Bank, now)
	if err != nil {
		return nil, err
	}
	return p.Parse(in.Name, bytes.NewReader(in.Data))
}

package models

// BankFormat describes where a bank's CSV export keeps the fields we need.
// DescriptionFields is ordered: the first non-empty column wins as payee.
type BankFormat struct {
	Name              string   `json:"name"`
	Identifiers       []string `json:"identifiers"`
	DescriptionFields []string `json:"descriptionFields"`
	DateFormat        string   `json:"dateFormat"`
	AmountField       string   `json:"amountField"`
}

// RawRow is one decoded CSV line with no semantic meaning yet.
type RawRow []string

// FileInput is one uploaded file handed to the pipeline: its name (used for
// transaction ids and error messages), the bank the user picked and the content.
type FileInput struct {
	Name string
	Bank string
	Data []byte
}

// FileResult reports what happened to a single file of an upload batch.
type FileResult struct {
	FileName         string `json:"fileName"`
	Bank             string `json:"bank"`
	TransactionCount int    `json:"transactionCount"`
	Error            string `json:"error,omitempty"`
}

package services

import (
	"context"
	"fmt"

	"github.com/username/gstfolio/src/models"
)

// SessionKey identifies one working session: an account, optionally working
// on behalf of one of its managed clients.
type SessionKey struct {
	AccountID string
	ClientID  string
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%s_client_%s", k.AccountID, k.ClientID)
}

// Store is the durable account/identity collaborator.
type Store interface {
	EnsureAccount(ctx context.Context, id, name string) (models.Account, error)
	GetSettings(ctx context.Context, accountID, clientID string) (*models.Settings, error)
	SaveMapping(ctx context.Context, accountID, clientID string, mapping models.PayeeMapping) error
	SaveAccountTable(ctx context.Context, accountID, clientID string, table models.AccountTable) error
	AppendUploadRecord(ctx context.Context, accountID, clientID string, rec models.UploadRecord) error
	ListUploadHistory(ctx context.Context, accountID, clientID string, limit int) ([]models.UploadRecord, error)
	CreateClient(ctx context.Context, accountID, companyName, irdNumber string) (models.ManagedClient, error)
	ListClients(ctx context.Context, accountID string) ([]models.ManagedClient, error)
	GetClient(ctx context.Context, accountID, clientID string) (models.ManagedClient, error)
}

// UploadResult reports a processed batch file by file.
type UploadResult struct {
	Files          []models.FileResult  `json:"files"`
	Parsed         int                  `json:"parsed"`
	Added          int                  `json:"added"`
	SessionTotal   int                  `json:"sessionTotal"`
	SucceededFiles int                  `json:"succeededFiles"`
	FailedFiles    int                  `json:"failedFiles"`
	Record         *models.UploadRecord `json:"record,omitempty"`
}

// UploadService ingests a batch of bank exports into the working session.
type UploadService interface {
	ProcessUpload(ctx context.Context, key SessionKey, files []models.FileInput) (*UploadResult, error)
}

// TransactionService edits the classified transactions of a session.
type TransactionService interface {
	List(ctx context.Context, key SessionKey) ([]models.CostedTransaction, error)
	Recategorize(ctx context.Context, key SessionKey, id, category string) (models.CostedTransaction, error)
	BulkRecategorize(ctx context.Context, key SessionKey, ids []string, category string) (int, error)
	Delete(ctx context.Context, key SessionKey, id string) error
	NewTask(ctx context.Context, key SessionKey)
}

// ReportService derives the summaries and exports of a session.
type ReportService interface {
	Summary(ctx context.Context, key SessionKey) (models.SalesExpensesSummary, error)
	GSTReturn(ctx context.Context, key SessionKey) (models.GSTReturn, error)
	Journal(ctx context.Context, key SessionKey) (models.Journal, error)
	TransactionReport(ctx context.Context, key SessionKey) ([]models.TransactionReportRow, error)
	JournalRows(ctx context.Context, key SessionKey) ([]models.JournalRow, error)
	ClientName(ctx context.Context, key SessionKey) string
}

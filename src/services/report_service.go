package services

import (
	"context"

	"github.com/username/gstfolio/src/logger"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/processors"
)

const defaultReportName = "gst"

type reportServiceImpl struct {
	settings           *SettingsService
	sessions           *SessionStore
	summaryProcessor   processors.SummaryProcessor
	gstReturnProcessor processors.GSTReturnProcessor
	journalProcessor   processors.JournalProcessor
}

func NewReportService(
	settings *SettingsService,
	sessions *SessionStore,
	summaryProcessor processors.SummaryProcessor,
	gstReturnProcessor processors.GSTReturnProcessor,
	journalProcessor processors.JournalProcessor,
) ReportService {
	return &reportServiceImpl{
		settings:           settings,
		sessions:           sessions,
		summaryProcessor:   summaryProcessor,
		gstReturnProcessor: gstReturnProcessor,
		journalProcessor:   journalProcessor,
	}
}

func (s *reportServiceImpl) costed(ctx context.Context, key SessionKey) ([]models.CostedTransaction, error) {
	settings, err := s.settings.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return processors.Cost(s.sessions.Get(key), settings.AccountTable), nil
}

func (s *reportServiceImpl) Summary(ctx context.Context, key SessionKey) (models.SalesExpensesSummary, error) {
	costed, err := s.costed(ctx, key)
	if err != nil {
		return models.SalesExpensesSummary{}, err
	}
	return s.summaryProcessor.Summarize(costed), nil
}

func (s *reportServiceImpl) GSTReturn(ctx context.Context, key SessionKey) (models.GSTReturn, error) {
	costed, err := s.costed(ctx, key)
	if err != nil {
		return models.GSTReturn{}, err
	}
	return s.gstReturnProcessor.Calculate(costed), nil
}

func (s *reportServiceImpl) Journal(ctx context.Context, key SessionKey) (models.Journal, error) {
	summary, err := s.Summary(ctx, key)
	if err != nil {
		return models.Journal{}, err
	}
	return s.journalProcessor.Build(summary), nil
}

// TransactionReport and JournalRows feed the CSV exports; an empty session
// has nothing to export.
func (s *reportServiceImpl) TransactionReport(ctx context.Context, key SessionKey) ([]models.TransactionReportRow, error) {
	costed, err := s.costed(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(costed) == 0 {
		return nil, ErrNoTransactions
	}
	return processors.BuildTransactionReport(costed), nil
}

func (s *reportServiceImpl) JournalRows(ctx context.Context, key SessionKey) ([]models.JournalRow, error) {
	costed, err := s.costed(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(costed) == 0 {
		return nil, ErrNoTransactions
	}
	return processors.FormatJournalRows(s.journalProcessor.Build(s.summaryProcessor.Summarize(costed))), nil
}

// ClientName is the company an export belongs to, used in file names.
func (s *reportServiceImpl) ClientName(ctx context.Context, key SessionKey) string {
	if key.ClientID == "" {
		return defaultReportName
	}
	c, err := s.settings.ResolveClient(ctx, key.AccountID, key.ClientID)
	if err != nil || c.CompanyName == "" {
		logger.FromContext(ctx).Warn("Falling back to default export name", "session", key.String(), "error", err)
		return defaultReportName
	}
	return c.CompanyName
}

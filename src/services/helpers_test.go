package services

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/gstfolio/src/database"
	"github.com/username/gstfolio/src/logger"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/processors"
)

var errStoreDown = errors.New("store unavailable")

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}

// fakeStore keeps settings in maps and can be told to fail writes.
type fakeStore struct {
	mu          sync.Mutex
	failWrites  bool
	settingsHit int
	tables      map[SessionKey]models.AccountTable
	mappings    map[SessionKey]models.PayeeMapping
	mapWrites   int
	clients     map[string]models.ManagedClient
	history     []models.UploadRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables:   map[SessionKey]models.AccountTable{},
		mappings: map[SessionKey]models.PayeeMapping{},
		clients:  map[string]models.ManagedClient{},
	}
}

func (f *fakeStore) EnsureAccount(_ context.Context, id, name string) (models.Account, error) {
	return models.Account{ID: id, Name: name, Role: models.RoleUser}, nil
}

func (f *fakeStore) GetSettings(_ context.Context, accountID, clientID string) (*models.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settingsHit++
	key := SessionKey{AccountID: accountID, ClientID: clientID}
	table, ok := f.tables[key]
	if !ok {
		if table, ok = f.tables[SessionKey{AccountID: accountID}]; !ok {
			table = models.DefaultAccountTable()
		}
	}
	return &models.Settings{
		AccountID:    accountID,
		ClientID:     clientID,
		Mapping:      f.mappings[key].Clone(),
		AccountTable: table.Clone(),
	}, nil
}

func (f *fakeStore) SaveMapping(_ context.Context, accountID, clientID string, mapping models.PayeeMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errStoreDown
	}
	f.mapWrites++
	f.mappings[SessionKey{AccountID: accountID, ClientID: clientID}] = mapping.Clone()
	return nil
}

func (f *fakeStore) SaveAccountTable(_ context.Context, accountID, clientID string, table models.AccountTable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errStoreDown
	}
	f.tables[SessionKey{AccountID: accountID, ClientID: clientID}] = table.Clone()
	return nil
}

func (f *fakeStore) AppendUploadRecord(_ context.Context, _, _ string, rec models.UploadRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errStoreDown
	}
	f.history = append(f.history, rec)
	return nil
}

func (f *fakeStore) ListUploadHistory(_ context.Context, _, _ string, _ int) ([]models.UploadRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.UploadRecord(nil), f.history...), nil
}

func (f *fakeStore) CreateClient(_ context.Context, accountID, companyName, irdNumber string) (models.ManagedClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := models.ManagedClient{ID: uuid.NewString(), AccountID: accountID, CompanyName: companyName, IRDNumber: irdNumber, CreatedAt: time.Now()}
	f.clients[c.ID] = c
	return c, nil
}

func (f *fakeStore) ListClients(_ context.Context, accountID string) ([]models.ManagedClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ManagedClient
	for _, c := range f.clients {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetClient(_ context.Context, accountID, clientID string) (models.ManagedClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[clientID]
	if !ok || c.AccountID != accountID {
		return models.ManagedClient{}, database.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) setFailWrites(fail bool) {
	f.mu.Lock()
	f.failWrites = fail
	f.mu.Unlock()
}

type testServices struct {
	store        *fakeStore
	settings     *SettingsService
	sessions     *SessionStore
	uploads      UploadService
	transactions TransactionService
	reports      ReportService
}

var testNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestServices() *testServices {
	store := newFakeStore()
	settings := NewSettingsService(store, cache.New(time.Hour, time.Hour))
	sessions := NewSessionStore(time.Hour, time.Hour)
	return &testServices{
		store:        store,
		settings:     settings,
		sessions:     sessions,
		uploads:      NewUploadService(settings, sessions, processors.NewClassifier(processors.DefaultKeywordRules), 2, func() time.Time { return testNow }),
		transactions: NewTransactionService(settings, sessions),
		reports: NewReportService(settings, sessions,
			processors.NewSummaryProcessor(), processors.NewGSTReturnProcessor(), processors.NewJournalProcessor()),
	}
}

var testKey = SessionKey{AccountID: "acc-1"}

const janCSV = "Date,Payee,Amount\n31/01/2024,BP,-57.50\n01/02/2024,Customer X,230.00\n"

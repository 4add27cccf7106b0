package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/gstfolio/src/config"
	"github.com/username/gstfolio/src/database"
	"github.com/username/gstfolio/src/logger"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/processors"
	"github.com/username/gstfolio/src/services"
)

const janCSV = "Date,Payee,Amount\n31/01/2024,BP,-57.50\n01/02/2024,Customer X,230.00\n"

var testNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		MaxUploadSizeBytes:   1 << 20,
		MaxFilesPerUpload:    3,
		MaxConcurrentDecodes: 2,
		AllowedOrigins:       []string{"http://localhost:3000"},
		RateLimitPerSecond:   1000,
		RateLimitBurst:       1000,
		DefaultBank:          "ANZ",
	}
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := testConfig()
	now := func() time.Time { return testNow }
	settings := services.NewSettingsService(store, cache.New(time.Hour, time.Hour))
	sessions := services.NewSessionStore(time.Hour, time.Hour)
	uploads := services.NewUploadService(settings, sessions, processors.NewClassifier(processors.DefaultKeywordRules), cfg.MaxConcurrentDecodes, now)
	txs := services.NewTransactionService(settings, sessions)
	reports := services.NewReportService(settings, sessions,
		processors.NewSummaryProcessor(), processors.NewGSTReturnProcessor(), processors.NewJournalProcessor())

	return NewRouter(cfg, Handlers{
		Settings:     settings,
		Upload:       NewUploadHandler(uploads, cfg),
		Transactions: NewTransactionHandler(txs, settings),
		Reports:      NewReportHandler(reports, now),
		Accounts:     NewSettingsHandler(settings, cfg.DefaultBank),
	})
}

type uploadFile struct {
	name        string
	contentType string
	body        string
}

func uploadRequest(t *testing.T, banks []string, files ...uploadFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.body))
		require.NoError(t, err)
	}
	for _, b := range banks {
		require.NoError(t, mw.WriteField("bank", b))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func do(router http.Handler, req *http.Request, account string) *httptest.ResponseRecorder {
	if account != "" {
		req.Header.Set(AccountIDHeader, account)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGetBanks(t *testing.T) {
	router := setupRouter(t)
	w := do(router, httptest.NewRequest(http.MethodGet, "/api/banks", nil), "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Banks   []string            `json:"banks"`
		Formats []models.BankFormat `json:"formats"`
		Default string              `json:"default"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"ASB", "BNZ", "Westpac", "Kiwibank", "ANZ"}, resp.Banks)
	assert.Equal(t, "ANZ", resp.Default)
	require.Len(t, resp.Formats, 5)
	assert.Equal(t, "ANZ", resp.Formats[4].Name)
	assert.Equal(t, []string{"Details", "Description", "Particulars"}, resp.Formats[4].Identifiers)
	assert.Equal(t, "DD/MM/YYYY", resp.Formats[4].DateFormat)
}

func TestIdentityRequired(t *testing.T) {
	router := setupRouter(t)
	w := do(router, httptest.NewRequest(http.MethodGet, "/api/transactions", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set(ClientIDHeader, "not-mine")
	w = do(router, req, "acc-1")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadAndReview(t *testing.T) {
	router := setupRouter(t)

	w := do(router, uploadRequest(t, []string{"ANZ", "Westpac"},
		uploadFile{name: "jan.csv", contentType: "text/csv", body: janCSV},
		uploadFile{name: "feb.csv", contentType: "text/csv", body: "Date,Other Party,Amount\n03/02/2024,Countdown,-23.00\n"},
	), "acc-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result services.UploadResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Added)
	require.NotNil(t, result.Record)
	assert.Equal(t, "ANZ, Westpac", result.Record.Bank)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/transactions", nil), "acc-1")
	require.Equal(t, http.StatusOK, w.Code)
	var list transactionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Transactions, 3)
	assert.Equal(t, models.CategorySales, list.Categories[0])

	w = do(router, jsonRequest(t, http.MethodPatch, "/api/transactions/jan.csv-0", categoryRequest{Category: "Purchases"}), "acc-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var costed models.CostedTransaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &costed))
	assert.Equal(t, "210", costed.Code)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/mapping", nil), "acc-1")
	assert.JSONEq(t, `{"BP":"Purchases"}`, w.Body.String())

	// Another account does not see the session.
	w = do(router, httptest.NewRequest(http.MethodGet, "/api/transactions", nil), "acc-2")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Transactions)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/upload-history", nil), "acc-1")
	var history []models.UploadRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, []string{"jan.csv", "feb.csv"}, history[0].FileNames)
}

func TestUploadValidation(t *testing.T) {
	router := setupRouter(t)

	w := do(router, uploadRequest(t, nil, uploadFile{name: "notes.txt", contentType: "text/plain", body: janCSV}), "acc-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CSV")

	w = do(router, uploadRequest(t, nil, uploadFile{name: "sheet.csv", contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", body: janCSV}), "acc-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, uploadRequest(t, nil), "acc-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, uploadRequest(t, nil, uploadFile{name: "bad.csv", contentType: "text/csv", body: "Foo,Bar\n1,2\n"}), "acc-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var result services.UploadResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.FailedFiles)
	assert.Contains(t, result.Files[0].Error, "could not find a valid transaction header row")
}

func TestUploadUnsupportedFileKeepsSiblings(t *testing.T) {
	router := setupRouter(t)

	w := do(router, uploadRequest(t, []string{"ANZ"},
		uploadFile{name: "jan.csv", contentType: "text/csv", body: janCSV},
		uploadFile{name: "notes.txt", contentType: "text/plain", body: "just some notes"},
	), "acc-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result services.UploadResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, result.SucceededFiles)
	assert.Equal(t, 1, result.FailedFiles)
	require.Len(t, result.Files, 2)
	assert.Empty(t, result.Files[0].Error)
	assert.Contains(t, result.Files[1].Error, "notes.txt")

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/transactions", nil), "acc-1")
	require.Equal(t, http.StatusOK, w.Code)
	var list transactionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Transactions, 2)
}

func TestTransactionEdits(t *testing.T) {
	router := setupRouter(t)
	w := do(router, uploadRequest(t, nil, uploadFile{name: "jan.csv", contentType: "text/csv", body: janCSV}), "acc-1")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, jsonRequest(t, http.MethodPatch, "/api/transactions/jan.csv-0", categoryRequest{Category: "Nope"}), "acc-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, jsonRequest(t, http.MethodPost, "/api/transactions/bulk-category", bulkCategoryRequest{IDs: []string{"jan.csv-0", "jan.csv-1"}, Category: "General Expenses"}), "acc-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated":2}`, w.Body.String())

	w = do(router, httptest.NewRequest(http.MethodDelete, "/api/transactions/jan.csv-1", nil), "acc-1")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(router, httptest.NewRequest(http.MethodDelete, "/api/transactions/jan.csv-1", nil), "acc-1")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, httptest.NewRequest(http.MethodDelete, "/api/transactions", nil), "acc-1")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(router, httptest.NewRequest(http.MethodGet, "/api/export/report.csv", nil), "acc-1")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReportsAndExports(t *testing.T) {
	router := setupRouter(t)
	w := do(router, uploadRequest(t, []string{"ANZ"}, uploadFile{name: "jan.csv", contentType: "text/csv", body: janCSV}), "acc-1")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/summary", nil), "acc-1")
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.Header.Set("If-None-Match", etag)
	w = do(router, req, "acc-1")
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/gst-return", nil), "acc-1")
	require.Equal(t, http.StatusOK, w.Code)
	var ret models.GSTReturn
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ret))
	assert.Equal(t, models.GSTToPay, ret.Label)
	assert.Equal(t, "28.125", ret.GSTDifference.String())

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/export/report.csv", nil), "acc-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="gst_gst_report_2024-03-01_09-30.csv"`, w.Header().Get("Content-Disposition"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Equal(t, "Date,Payee,Category,Code,Amount,GST Ratio,GST Amount", lines[0])
	assert.Len(t, lines, 3)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/export/journal.csv", nil), "acc-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "gst_journal_20240301.csv")
	assert.Contains(t, w.Body.String(), "Total,")
}

func TestAccountsAndClients(t *testing.T) {
	router := setupRouter(t)

	w := do(router, jsonRequest(t, http.MethodPost, "/api/accounts", addCategoryRequest{Name: "Subscriptions", Code: "485"}), "acc-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var added models.AccountCategory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &added))
	assert.True(t, added.IsDeletable)

	w = do(router, jsonRequest(t, http.MethodPost, "/api/accounts", addCategoryRequest{Name: "Subscriptions"}), "acc-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, httptest.NewRequest(http.MethodDelete, "/api/accounts/1", nil), "acc-1")
	assert.Equal(t, http.StatusBadRequest, w.Code, "core accounts cannot be deleted")

	w = do(router, jsonRequest(t, http.MethodPost, "/api/clients", createClientRequest{CompanyName: "Kea Ltd", IRDNumber: "123-456-789"}), "acc-1")
	require.Equal(t, http.StatusCreated, w.Code)
	var client models.ManagedClient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &client))

	// The client inherits the agent's chart until it is edited.
	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set(ClientIDHeader, client.ID)
	w = do(router, req, "acc-1")
	require.Equal(t, http.StatusOK, w.Code)
	var table models.AccountTable
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &table))
	_, ok := table.Lookup("Subscriptions")
	assert.True(t, ok)

	req = httptest.NewRequest(http.MethodDelete, "/api/accounts/"+added.ID, nil)
	req.Header.Set(ClientIDHeader, client.ID)
	w = do(router, req, "acc-1")
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/accounts/reset", nil)
	req.Header.Set(ClientIDHeader, client.ID)
	w = do(router, req, "acc-1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &table))
	_, ok = table.Lookup("Subscriptions")
	assert.True(t, ok, "reset restores the agent's chart")

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/clients", nil), "acc-1")
	var clients []models.ManagedClient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clients))
	require.Len(t, clients, 1)
	assert.Equal(t, "Kea Ltd", clients[0].CompanyName)
}

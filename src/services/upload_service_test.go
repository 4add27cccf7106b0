package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/gstfolio/src/models"
)

func TestUploadService_ProcessUpload(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()

	files := []models.FileInput{
		{Name: "jan.csv", Bank: "ANZ", Data: []byte(janCSV)},
		{Name: "broken.csv", Bank: "ANZ", Data: []byte("Foo,Bar\n1,2\n")},
		{Name: "feb.csv", Bank: "Westpac", Data: []byte("Date,Other Party,Amount\n03/02/2024,Countdown,-23.00\n")},
	}
	res, err := ts.uploads.ProcessUpload(ctx, testKey, files)
	require.NoError(t, err)

	require.Len(t, res.Files, 3)
	assert.Equal(t, 2, res.Files[0].TransactionCount)
	assert.NotEmpty(t, res.Files[1].Error)
	assert.Equal(t, "feb.csv", res.Files[2].FileName, "results keep upload order")
	assert.Equal(t, 2, res.SucceededFiles)
	assert.Equal(t, 1, res.FailedFiles)
	assert.Equal(t, 3, res.Parsed)
	assert.Equal(t, 3, res.Added)
	assert.Equal(t, 3, res.SessionTotal)

	require.NotNil(t, res.Record)
	assert.Equal(t, []string{"jan.csv", "broken.csv", "feb.csv"}, res.Record.FileNames)
	assert.Equal(t, "ANZ, Westpac", res.Record.Bank)
	assert.Equal(t, 3, res.Record.TotalTransactions)
	assert.Equal(t, testNow, res.Record.Timestamp)

	txs := ts.sessions.Get(testKey)
	require.Len(t, txs, 3)
	assert.Equal(t, "Motor Vehicle Expenses", txs[0].Category)
	assert.Equal(t, models.CategorySales, txs[1].Category)
	assert.Equal(t, "Purchases", txs[2].Category)
}

func TestUploadService_ReuploadAddsNothing(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()
	files := []models.FileInput{{Name: "jan.csv", Bank: "ANZ", Data: []byte(janCSV)}}

	_, err := ts.uploads.ProcessUpload(ctx, testKey, files)
	require.NoError(t, err)
	res, err := ts.uploads.ProcessUpload(ctx, testKey, files)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Parsed)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 2, res.SessionTotal)
}

func TestUploadService_UsesLearnedMapping(t *testing.T) {
	ts := newTestServices()
	ctx := context.Background()
	require.NoError(t, ts.settings.SaveMapping(ctx, testKey, models.PayeeMapping{"BP": "Purchases"}))

	_, err := ts.uploads.ProcessUpload(ctx, testKey, []models.FileInput{{Name: "jan.csv", Bank: "ANZ", Data: []byte(janCSV)}})
	require.NoError(t, err)
	assert.Equal(t, "Purchases", ts.sessions.Get(testKey)[0].Category)
}

func TestUploadService_AllFilesFail(t *testing.T) {
	ts := newTestServices()
	files := []models.FileInput{
		{Name: "notes.txt", Bank: "ANZ", Data: []byte(janCSV)},
		{Name: "jan.csv", Bank: "Rabobank", Data: []byte(janCSV)},
	}
	res, err := ts.uploads.ProcessUpload(context.Background(), testKey, files)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParsingFailed)
	require.NotNil(t, res)
	assert.Equal(t, 2, res.FailedFiles)
	assert.Contains(t, res.Files[1].Error, "unknown bank")
	assert.Empty(t, ts.sessions.Get(testKey))
	assert.Empty(t, ts.store.history)
}

func TestUploadService_NoFiles(t *testing.T) {
	ts := newTestServices()
	_, err := ts.uploads.ProcessUpload(context.Background(), testKey, nil)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestUploadService_HistoryFailureIsNotFatal(t *testing.T) {
	ts := newTestServices()
	ts.store.setFailWrites(true)
	res, err := ts.uploads.ProcessUpload(context.Background(), testKey, []models.FileInput{{Name: "jan.csv", Bank: "ANZ", Data: []byte(janCSV)}})
	require.NoError(t, err)
	assert.Nil(t, res.Record)
	assert.Equal(t, 2, res.Added)
}

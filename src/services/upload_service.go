package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/username/gstfolio/src/logger"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/parsers"
	"github.com/username/gstfolio/src/processors"
	"golang.org/x/sync/errgroup"
)

type uploadServiceImpl struct {
	settings      *SettingsService
	sessions      *SessionStore
	classifier    processors.Classifier
	maxConcurrent int
	now           func() time.Time
}

func NewUploadService(
	settings *SettingsService,
	sessions *SessionStore,
	classifier processors.Classifier,
	maxConcurrent int,
	now func() time.Time,
) UploadService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if now == nil {
		now = time.Now
	}
	return &uploadServiceImpl{
		settings:      settings,
		sessions:      sessions,
		classifier:    classifier,
		maxConcurrent: maxConcurrent,
		now:           now,
	}
}

type decodeSlot struct {
	txs []models.Transaction
	err error
}

func (s *uploadServiceImpl) ProcessUpload(ctx context.Context, key SessionKey, files []models.FileInput) (*UploadResult, error) {
	overallStartTime := time.Now()
	log := logger.FromContext(ctx)
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	log.Info("ProcessUpload START", "session", key.String(), "files", len(files))

	// Each file decodes into its own slot; a broken file never cancels the others.
	slots := make([]decodeSlot, len(files))
	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, f := range files {
		g.Go(func() error {
			txs, err := parsers.ParseFile(f, s.now)
			slots[i] = decodeSlot{txs: txs, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := &UploadResult{Files: make([]models.FileResult, len(files))}
	var batch []models.Transaction
	seen := make(map[string]bool)
	for i, f := range files {
		fr := models.FileResult{FileName: f.Name, Bank: f.Bank}
		if err := slots[i].err; err != nil {
			fr.Error = err.Error()
			result.FailedFiles++
			log.Warn("File could not be parsed", "file", f.Name, "bank", f.Bank, "error", err)
			result.Files[i] = fr
			continue
		}
		fr.TransactionCount = len(slots[i].txs)
		result.SucceededFiles++
		result.Parsed += len(slots[i].txs)
		for _, tx := range slots[i].txs {
			if seen[tx.ID] {
				continue
			}
			seen[tx.ID] = true
			batch = append(batch, tx)
		}
		result.Files[i] = fr
	}

	if result.SucceededFiles == 0 {
		return result, fmt.Errorf("%w: %s", ErrParsingFailed, joinFileErrors(result.Files))
	}

	settings, err := s.settings.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	classified := s.classifier.ClassifyAll(batch, settings.Mapping)

	err = s.sessions.Update(key, func(current []models.Transaction) ([]models.Transaction, error) {
		existing := make(map[string]bool, len(current))
		for _, tx := range current {
			existing[tx.ID] = true
		}
		for _, tx := range classified {
			if existing[tx.ID] {
				continue
			}
			current = append(current, tx)
			result.Added++
		}
		result.SessionTotal = len(current)
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	rec := s.newRecord(files, result)
	if err := s.settings.RecordUpload(ctx, key, rec); err != nil {
		log.Error("Failed to record upload history", "session", key.String(), "error", err)
	} else {
		result.Record = &rec
	}

	log.Info("ProcessUpload END", "session", key.String(), "parsed", result.Parsed, "added", result.Added,
		"failedFiles", result.FailedFiles, "duration", time.Since(overallStartTime))
	return result, nil
}

func (s *uploadServiceImpl) newRecord(files []models.FileInput, result *UploadResult) models.UploadRecord {
	names := make([]string, 0, len(files))
	var banks []string
	seenBank := make(map[string]bool)
	for _, f := range files {
		names = append(names, f.Name)
		if f.Bank != "" && !seenBank[f.Bank] {
			seenBank[f.Bank] = true
			banks = append(banks, f.Bank)
		}
	}
	return models.UploadRecord{
		ID:                uuid.NewString(),
		Timestamp:         s.now().UTC(),
		FileNames:         names,
		Bank:              strings.Join(banks, ", "),
		TotalTransactions: result.Parsed,
	}
}

func joinFileErrors(files []models.FileResult) string {
	msgs := make([]string, 0, len(files))
	for _, f := range files {
		if f.Error != "" {
			msgs = append(msgs, f.Error)
		}
	}
	return strings.Join(msgs, "; ")
}

package services

import (
	"context"
	"fmt"

	"github.com/username/gstfolio/src/logger"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/processors"
)

type transactionServiceImpl struct {
	settings *SettingsService
	sessions *SessionStore
}

func NewTransactionService(settings *SettingsService, sessions *SessionStore) TransactionService {
	return &transactionServiceImpl{settings: settings, sessions: sessions}
}

func (s *transactionServiceImpl) List(ctx context.Context, key SessionKey) ([]models.CostedTransaction, error) {
	settings, err := s.settings.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return processors.Cost(s.sessions.Get(key), settings.AccountTable), nil
}

func (s *transactionServiceImpl) Recategorize(ctx context.Context, key SessionKey, id, category string) (models.CostedTransaction, error) {
	updated, err := s.recategorize(ctx, key, map[string]bool{id: true}, category)
	if err != nil {
		return models.CostedTransaction{}, err
	}
	if len(updated) == 0 {
		return models.CostedTransaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	return updated[0], nil
}

func (s *transactionServiceImpl) BulkRecategorize(ctx context.Context, key SessionKey, ids []string, category string) (int, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	updated, err := s.recategorize(ctx, key, wanted, category)
	if err != nil {
		return 0, err
	}
	if len(updated) == 0 && len(ids) > 0 {
		return 0, fmt.Errorf("%w: none of %d ids", ErrTransactionNotFound, len(ids))
	}
	return len(updated), nil
}

// recategorize moves the wanted transactions to category and teaches the
// mapping every payee it saw. When the mapping cannot be saved the session is
// put back the way it was.
func (s *transactionServiceImpl) recategorize(ctx context.Context, key SessionKey, ids map[string]bool, category string) ([]models.CostedTransaction, error) {
	settings, err := s.settings.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if _, ok := settings.AccountTable.Lookup(category); !ok {
		return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, category)
	}

	var before, changed []models.Transaction
	err = s.sessions.Update(key, func(txs []models.Transaction) ([]models.Transaction, error) {
		for i, tx := range txs {
			if !ids[tx.ID] {
				continue
			}
			before = append(before, tx)
			txs[i].Category = category
			changed = append(changed, txs[i])
		}
		return txs, nil
	})
	if err != nil {
		return nil, err
	}
	if len(before) == 0 {
		return nil, nil
	}

	learned, err := s.settings.LearnPayees(ctx, key, func(mapping models.PayeeMapping) (models.PayeeMapping, bool) {
		grew := false
		for _, tx := range before {
			var ok bool
			if mapping, ok = processors.Learn(mapping, tx, category); ok {
				grew = true
			}
		}
		return mapping, grew
	})
	if err != nil {
		s.revert(ctx, key, before, category)
		return nil, err
	}
	logger.FromContext(ctx).Info("Transactions recategorized", "session", key.String(), "category", category,
		"count", len(changed), "mappingUpdated", learned)
	return processors.Cost(changed, settings.AccountTable), nil
}

// revert puts back the previous category of every transaction this call
// moved, skipping any that another edit has moved since.
func (s *transactionServiceImpl) revert(ctx context.Context, key SessionKey, before []models.Transaction, category string) {
	previous := make(map[string]string, len(before))
	for _, tx := range before {
		previous[tx.ID] = tx.Category
	}
	reverted := 0
	err := s.sessions.Update(key, func(txs []models.Transaction) ([]models.Transaction, error) {
		for i, tx := range txs {
			if old, ok := previous[tx.ID]; ok && tx.Category == category {
				txs[i].Category = old
				reverted++
			}
		}
		return txs, nil
	})
	log := logger.FromContext(ctx)
	if err != nil {
		log.Error("Failed to revert recategorized transactions", "session", key.String(), "error", err)
		return
	}
	log.Warn("Recategorization reverted", "session", key.String(), "reverted", reverted, "skipped", len(before)-reverted)
}

func (s *transactionServiceImpl) Delete(ctx context.Context, key SessionKey, id string) error {
	return s.sessions.Update(key, func(txs []models.Transaction) ([]models.Transaction, error) {
		for i, tx := range txs {
			if tx.ID == id {
				logger.FromContext(ctx).Info("Transaction removed from session", "session", key.String(), "id", id)
				return append(txs[:i], txs[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	})
}

func (s *transactionServiceImpl) NewTask(ctx context.Context, key SessionKey) {
	s.sessions.Clear(key)
	logger.FromContext(ctx).Info("Session cleared for new task", "session", key.String())
}

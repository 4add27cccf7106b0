package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/gstfolio/src/database"
	"github.com/username/gstfolio/src/logger"
	"github.com/username/gstfolio/src/models"
)

const (
	ckSettings = "settings_%s"
	ckAccount  = "account_%s"
)

// errUnchanged lets a mutate callback skip the write.
var errUnchanged = errors.New("settings unchanged")

// SettingsService fronts the store with a cache of each session's account
// table and payee mapping. Writes update the cache first and revert it when
// the store rejects them.
type SettingsService struct {
	store Store
	cache *cache.Cache
	mu    sync.Mutex
}

func NewSettingsService(store Store, settingsCache *cache.Cache) *SettingsService {
	return &SettingsService{store: store, cache: settingsCache}
}

// EnsureAccount makes sure the account exists, hitting the store once per
// cache lifetime.
func (s *SettingsService) EnsureAccount(ctx context.Context, accountID string) (models.Account, error) {
	cacheKey := fmt.Sprintf(ckAccount, accountID)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(models.Account), nil
	}
	acc, err := s.store.EnsureAccount(ctx, accountID, "")
	if err != nil {
		return models.Account{}, err
	}
	s.cache.Set(cacheKey, acc, cache.DefaultExpiration)
	return acc, nil
}

// ResolveClient checks that clientID is one of the account's managed clients.
func (s *SettingsService) ResolveClient(ctx context.Context, accountID, clientID string) (models.ManagedClient, error) {
	c, err := s.store.GetClient(ctx, accountID, clientID)
	if errors.Is(err, database.ErrNotFound) {
		return models.ManagedClient{}, fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}
	return c, err
}

// Get returns a private copy of the session's settings.
func (s *SettingsService) Get(ctx context.Context, key SessionKey) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return current.Clone(), nil
}

// load returns the cached value itself; callers hold s.mu and must not modify it.
func (s *SettingsService) load(ctx context.Context, key SessionKey) (*models.Settings, error) {
	cacheKey := fmt.Sprintf(ckSettings, key)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(*models.Settings), nil
	}
	logger.FromContext(ctx).Debug("Cache miss for settings, loading from store", "session", key.String())
	settings, err := s.store.GetSettings(ctx, key.AccountID, key.ClientID)
	if err != nil {
		return nil, err
	}
	if settings.Mapping == nil {
		settings.Mapping = models.PayeeMapping{}
	}
	s.cache.Set(cacheKey, settings, cache.DefaultExpiration)
	return settings, nil
}

// mutate applies fn to a copy of the settings, publishes it to the cache and
// then persists it. A failed persist restores the previous cached value.
func (s *SettingsService) mutate(ctx context.Context, key SessionKey, op string,
	fn func(*models.Settings) error, persist func(*models.Settings) error) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf(ckSettings, key)
	s.cache.Set(cacheKey, next, cache.DefaultExpiration)
	if err := persist(next); err != nil {
		s.cache.Set(cacheKey, current, cache.DefaultExpiration)
		logger.FromContext(ctx).Error("Settings write failed, reverted in-memory state", "op", op, "session", key.String(), "error", err)
		return nil, &StateError{Op: op, Err: err}
	}
	return next.Clone(), nil
}

// SaveMapping replaces the learned payee mapping.
func (s *SettingsService) SaveMapping(ctx context.Context, key SessionKey, mapping models.PayeeMapping) error {
	_, err := s.mutate(ctx, key, "save payee mapping",
		func(next *models.Settings) error {
			next.Mapping = mapping.Clone()
			return nil
		},
		func(next *models.Settings) error {
			return s.store.SaveMapping(ctx, key.AccountID, key.ClientID, next.Mapping)
		})
	return err
}

// LearnPayees runs learn over the current mapping under the settings lock and
// persists the result when learn reports a change. Concurrent callers never
// overwrite each other's learned payees.
func (s *SettingsService) LearnPayees(ctx context.Context, key SessionKey,
	learn func(models.PayeeMapping) (models.PayeeMapping, bool)) (bool, error) {
	_, err := s.mutate(ctx, key, "learn payee mapping",
		func(next *models.Settings) error {
			mapping, changed := learn(next.Mapping)
			if !changed {
				return errUnchanged
			}
			next.Mapping = mapping
			return nil
		},
		func(next *models.Settings) error {
			return s.store.SaveMapping(ctx, key.AccountID, key.ClientID, next.Mapping)
		})
	if errors.Is(err, errUnchanged) {
		return false, nil
	}
	return err == nil, err
}

func (s *SettingsService) saveTable(ctx context.Context, key SessionKey, op string,
	edit func(models.AccountTable) (models.AccountTable, error)) (models.AccountTable, error) {
	next, err := s.mutate(ctx, key, op,
		func(next *models.Settings) error {
			table, err := edit(next.AccountTable)
			if err != nil {
				return err
			}
			normalized, err := table.Normalize()
			if err != nil {
				return err
			}
			next.AccountTable = normalized
			return nil
		},
		func(next *models.Settings) error {
			return s.store.SaveAccountTable(ctx, key.AccountID, key.ClientID, next.AccountTable)
		})
	if err != nil {
		return nil, wrapTableError(err)
	}
	if key.ClientID == "" {
		s.dropClientSettings(key.AccountID)
	}
	return next.AccountTable, nil
}

// dropClientSettings evicts the cached settings of an agent's clients, which
// may have been inherited from the table that just changed.
func (s *SettingsService) dropClientSettings(accountID string) {
	prefix := fmt.Sprintf(ckSettings, SessionKey{AccountID: accountID}) // ends in "_client_"
	for k := range s.cache.Items() {
		if strings.HasPrefix(k, prefix) && k != prefix {
			s.cache.Delete(k)
		}
	}
}

func wrapTableError(err error) error {
	switch {
	case errors.Is(err, models.ErrCategoryNotFound):
		return fmt.Errorf("%w: %w", ErrCategoryNotFound, err)
	case errors.Is(err, models.ErrEmptyCategoryName),
		errors.Is(err, models.ErrDuplicateCategory),
		errors.Is(err, models.ErrCategoryNotDeletable):
		return fmt.Errorf("%w: %w", ErrInvalidAccountTable, err)
	}
	return err
}

// ReplaceAccountTable validates and stores a whole edited table.
func (s *SettingsService) ReplaceAccountTable(ctx context.Context, key SessionKey, table models.AccountTable) (models.AccountTable, error) {
	return s.saveTable(ctx, key, "replace account table", func(current models.AccountTable) (models.AccountTable, error) {
		// Deletability is owned by the server, not the client.
		byID := make(map[string]bool, len(current))
		for _, c := range current {
			byID[c.ID] = c.IsDeletable
		}
		out := table.Clone()
		for i := range out {
			if deletable, known := byID[out[i].ID]; known {
				out[i].IsDeletable = deletable
			} else {
				out[i].IsDeletable = true
			}
		}
		return out, nil
	})
}

// AddCategory appends a new deletable account. An empty name gets the
// placeholder "New Account" and a nil ratio defaults to fully claimable.
func (s *SettingsService) AddCategory(ctx context.Context, key SessionKey, name, code string, ratio *decimal.Decimal) (models.AccountCategory, error) {
	if name == "" {
		name = "New Account"
	}
	r := decimal.NewFromInt(1)
	if ratio != nil {
		r = *ratio
	}
	var added models.AccountCategory
	_, err := s.saveTable(ctx, key, "add account", func(current models.AccountTable) (models.AccountTable, error) {
		table, c, err := current.Add(name, code, r)
		added = c
		return table, err
	})
	if err != nil {
		return models.AccountCategory{}, err
	}
	return added, nil
}

func (s *SettingsService) UpdateCategory(ctx context.Context, key SessionKey, c models.AccountCategory) (models.AccountTable, error) {
	return s.saveTable(ctx, key, "update account", func(current models.AccountTable) (models.AccountTable, error) {
		return current.Update(c)
	})
}

func (s *SettingsService) DeleteCategory(ctx context.Context, key SessionKey, id string) (models.AccountTable, error) {
	return s.saveTable(ctx, key, "delete account", func(current models.AccountTable) (models.AccountTable, error) {
		return current.Delete(id)
	})
}

// ResetAccountTable restores the default chart. A managed client is reset to
// its agent's table instead.
func (s *SettingsService) ResetAccountTable(ctx context.Context, key SessionKey) (models.AccountTable, error) {
	base := models.DefaultAccountTable()
	if key.ClientID != "" {
		agent, err := s.Get(ctx, SessionKey{AccountID: key.AccountID})
		if err != nil {
			return nil, err
		}
		base = agent.AccountTable
	}
	return s.saveTable(ctx, key, "reset account table", func(models.AccountTable) (models.AccountTable, error) {
		return base, nil
	})
}

func (s *SettingsService) CreateClient(ctx context.Context, accountID, companyName, irdNumber string) (models.ManagedClient, error) {
	if companyName == "" {
		return models.ManagedClient{}, fmt.Errorf("%w: company name is required", ErrInvalidAccountTable)
	}
	c, err := s.store.CreateClient(ctx, accountID, companyName, irdNumber)
	if err != nil {
		return models.ManagedClient{}, &StateError{Op: "create client", Err: err}
	}
	s.cache.Delete(fmt.Sprintf(ckAccount, accountID))
	return c, nil
}

func (s *SettingsService) ListClients(ctx context.Context, accountID string) ([]models.ManagedClient, error) {
	return s.store.ListClients(ctx, accountID)
}

func (s *SettingsService) RecordUpload(ctx context.Context, key SessionKey, rec models.UploadRecord) error {
	return s.store.AppendUploadRecord(ctx, key.AccountID, key.ClientID, rec)
}

func (s *SettingsService) UploadHistory(ctx context.Context, key SessionKey, limit int) ([]models.UploadRecord, error) {
	return s.store.ListUploadHistory(ctx, key.AccountID, key.ClientID, limit)
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/username/gstfolio/src/models"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type accountRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Role      string `db:"role"`
	CreatedAt string `db:"created_at"`
}

func (r accountRow) model() models.Account {
	return models.Account{ID: r.ID, Name: r.Name, Role: r.Role, CreatedAt: parseTime(r.CreatedAt)}
}

type clientRow struct {
	ID          string `db:"id"`
	AccountID   string `db:"account_id"`
	CompanyName string `db:"company_name"`
	IRDNumber   string `db:"ird_number"`
	CreatedAt   string `db:"created_at"`
}

func (r clientRow) model() models.ManagedClient {
	return models.ManagedClient{
		ID:          r.ID,
		AccountID:   r.AccountID,
		CompanyName: r.CompanyName,
		IRDNumber:   r.IRDNumber,
		CreatedAt:   parseTime(r.CreatedAt),
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// EnsureAccount creates the account on first sight and gives it the default
// chart of accounts. An existing account whose table was emptied gets the
// default table back.
func (s *Store) EnsureAccount(ctx context.Context, id, name string) (models.Account, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO accounts (id, name, role, created_at) VALUES (?, ?, ?, ?)`,
		id, name, models.RoleUser, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to insert account %s: %w", id, err)
	}

	var count int
	if err := tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM account_categories WHERE account_id = ? AND client_id = ''`, id); err != nil {
		return models.Account{}, fmt.Errorf("failed to count categories for %s: %w", id, err)
	}
	if count == 0 {
		if err := replaceTable(ctx, tx, id, "", models.DefaultAccountTable()); err != nil {
			return models.Account{}, err
		}
	}

	var row accountRow
	if err := tx.GetContext(ctx, &row, `SELECT id, name, role, created_at FROM accounts WHERE id = ?`, id); err != nil {
		return models.Account{}, fmt.Errorf("failed to load account %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return models.Account{}, fmt.Errorf("failed to commit account %s: %w", id, err)
	}
	return row.model(), nil
}

// CreateClient adds a managed client and marks the owning account as an agent.
func (s *Store) CreateClient(ctx context.Context, accountID, companyName, irdNumber string) (models.ManagedClient, error) {
	row := clientRow{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		CompanyName: companyName,
		IRDNumber:   irdNumber,
		CreatedAt:   time.Now().UTC().Format(timeLayout),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ManagedClient{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO managed_clients (id, account_id, company_name, ird_number, created_at)
		 VALUES (:id, :account_id, :company_name, :ird_number, :created_at)`, row); err != nil {
		return models.ManagedClient{}, fmt.Errorf("failed to insert client for %s: %w", accountID, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET role = ? WHERE id = ?`, models.RoleAgent, accountID); err != nil {
		return models.ManagedClient{}, fmt.Errorf("failed to promote %s to agent: %w", accountID, err)
	}
	if err := tx.Commit(); err != nil {
		return models.ManagedClient{}, fmt.Errorf("failed to commit client: %w", err)
	}
	return row.model(), nil
}

func (s *Store) ListClients(ctx context.Context, accountID string) ([]models.ManagedClient, error) {
	var rows []clientRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, account_id, company_name, ird_number, created_at
		 FROM managed_clients WHERE account_id = ? ORDER BY company_name COLLATE NOCASE, id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients for %s: %w", accountID, err)
	}
	out := make([]models.ManagedClient, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

// GetClient returns ErrNotFound unless clientID belongs to accountID.
func (s *Store) GetClient(ctx context.Context, accountID, clientID string) (models.ManagedClient, error) {
	var row clientRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, account_id, company_name, ird_number, created_at
		 FROM managed_clients WHERE account_id = ? AND id = ?`, accountID, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ManagedClient{}, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
	}
	if err != nil {
		return models.ManagedClient{}, fmt.Errorf("failed to load client %s: %w", clientID, err)
	}
	return row.model(), nil
}

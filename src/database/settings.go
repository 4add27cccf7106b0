package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/username/gstfolio/src/models"
)

type categoryRow struct {
	models.AccountCategory
	AccountID string `db:"account_id"`
	ClientID  string `db:"client_id"`
	Position  int    `db:"position"`
}

type mappingRow struct {
	Payee    string `db:"payee"`
	Category string `db:"category"`
}

// GetSettings loads the table and mapping for an account, or for one of its
// managed clients. A client without its own table inherits the agent's
// table; an account without any table gets the default one.
func (s *Store) GetSettings(ctx context.Context, accountID, clientID string) (*models.Settings, error) {
	table, err := s.loadTable(ctx, accountID, clientID)
	if err != nil {
		return nil, err
	}
	if len(table) == 0 && clientID != "" {
		if table, err = s.loadTable(ctx, accountID, ""); err != nil {
			return nil, err
		}
	}
	if len(table) == 0 {
		table = models.DefaultAccountTable()
	}

	var rows []mappingRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT payee, category FROM payee_mappings WHERE account_id = ? AND client_id = ?`,
		accountID, clientID); err != nil {
		return nil, fmt.Errorf("failed to load payee mapping for %s: %w", accountID, err)
	}
	mapping := make(models.PayeeMapping, len(rows))
	for _, r := range rows {
		mapping[r.Payee] = r.Category
	}

	return &models.Settings{AccountID: accountID, ClientID: clientID, Mapping: mapping, AccountTable: table}, nil
}

func (s *Store) loadTable(ctx context.Context, accountID, clientID string) (models.AccountTable, error) {
	var table models.AccountTable
	err := s.db.SelectContext(ctx, &table,
		`SELECT id, name, ratio, code, is_deletable FROM account_categories
		 WHERE account_id = ? AND client_id = ? ORDER BY position`, accountID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account table for %s/%s: %w", accountID, clientID, err)
	}
	return table, nil
}

// SaveAccountTable replaces the stored table.
func (s *Store) SaveAccountTable(ctx context.Context, accountID, clientID string, table models.AccountTable) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceTable(ctx, tx, accountID, clientID, table); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceTable(ctx context.Context, tx *sqlx.Tx, accountID, clientID string, table models.AccountTable) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM account_categories WHERE account_id = ? AND client_id = ?`, accountID, clientID); err != nil {
		return fmt.Errorf("failed to clear account table: %w", err)
	}
	stmt, err := tx.PrepareNamedContext(ctx,
		`INSERT INTO account_categories (account_id, client_id, id, name, ratio, code, is_deletable, position)
		 VALUES (:account_id, :client_id, :id, :name, :ratio, :code, :is_deletable, :position)`)
	if err != nil {
		return fmt.Errorf("failed to prepare category insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range table {
		row := categoryRow{AccountCategory: c, AccountID: accountID, ClientID: clientID, Position: i}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("failed to insert category %q: %w", c.Name, err)
		}
	}
	return nil
}

// SaveMapping replaces the stored payee mapping.
func (s *Store) SaveMapping(ctx context.Context, accountID, clientID string, mapping models.PayeeMapping) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM payee_mappings WHERE account_id = ? AND client_id = ?`, accountID, clientID); err != nil {
		return fmt.Errorf("failed to clear payee mapping: %w", err)
	}
	for payee, category := range mapping {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payee_mappings (account_id, client_id, payee, category) VALUES (?, ?, ?, ?)`,
			accountID, clientID, payee, category); err != nil {
			return fmt.Errorf("failed to save mapping for %q: %w", payee, err)
		}
	}
	return tx.Commit()
}

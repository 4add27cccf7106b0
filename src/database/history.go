package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/username/gstfolio/src/models"
)

type uploadRow struct {
	ID                string `db:"id"`
	AccountID         string `db:"account_id"`
	ClientID          string `db:"client_id"`
	CreatedAt         string `db:"created_at"`
	FileNames         string `db:"file_names"`
	Bank              string `db:"bank"`
	TotalTransactions int    `db:"total_transactions"`
}

func (s *Store) AppendUploadRecord(ctx context.Context, accountID, clientID string, rec models.UploadRecord) error {
	names, err := json.Marshal(rec.FileNames)
	if err != nil {
		return fmt.Errorf("failed to encode file names: %w", err)
	}
	row := uploadRow{
		ID:                rec.ID,
		AccountID:         accountID,
		ClientID:          clientID,
		CreatedAt:         rec.Timestamp.UTC().Format(timeLayout),
		FileNames:         string(names),
		Bank:              rec.Bank,
		TotalTransactions: rec.TotalTransactions,
	}
	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO upload_history (id, account_id, client_id, created_at, file_names, bank, total_transactions)
		 VALUES (:id, :account_id, :client_id, :created_at, :file_names, :bank, :total_transactions)`, row)
	if err != nil {
		return fmt.Errorf("failed to save upload record: %w", err)
	}
	return nil
}

// ListUploadHistory returns the newest records first. limit <= 0 means all.
func (s *Store) ListUploadHistory(ctx context.Context, accountID, clientID string, limit int) ([]models.UploadRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []uploadRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, account_id, client_id, created_at, file_names, bank, total_transactions
		 FROM upload_history WHERE account_id = ? AND client_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, accountID, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload history: %w", err)
	}

	out := make([]models.UploadRecord, 0, len(rows))
	for _, r := range rows {
		var names []string
		if err := json.Unmarshal([]byte(r.FileNames), &names); err != nil {
			return nil, fmt.Errorf("failed to decode file names of %s: %w", r.ID, err)
		}
		ts, _ := time.Parse(timeLayout, r.CreatedAt)
		out = append(out, models.UploadRecord{
			ID:                r.ID,
			Timestamp:         ts,
			FileNames:         names,
			Bank:              r.Bank,
			TotalTransactions: r.TotalTransactions,
		})
	}
	return out, nil
}

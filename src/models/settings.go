package models

import (
	"strings"
	"time"
)

// PayeeMapping maps a normalized payee to the category the user picked for it.
// It is treated as an immutable value: With returns a modified copy.
type PayeeMapping map[string]string

// NormalizePayee is the key form used by PayeeMapping.
func NormalizePayee(payee string) string {
	return strings.ToUpper(strings.TrimSpace(payee))
}

// Lookup returns the learned category for a payee.
func (m PayeeMapping) Lookup(payee string) (string, bool) {
	if len(m) == 0 {
		return "", false
	}
	c, ok := m[NormalizePayee(payee)]
	return c, ok
}

// With returns a copy of the mapping with payee bound to category.
func (m PayeeMapping) With(payee, category string) PayeeMapping {
	out := m.Clone()
	out[NormalizePayee(payee)] = category
	return out
}

// Clone returns an independent copy, never nil.
func (m PayeeMapping) Clone() PayeeMapping {
	out := make(PayeeMapping, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Settings is the state carried between sessions for one account, or for one
// managed client of an agent account when ClientID is set.
type Settings struct {
	AccountID    string       `json:"accountId"`
	ClientID     string       `json:"clientId,omitempty"`
	Mapping      PayeeMapping `json:"mapping"`
	AccountTable AccountTable `json:"accountTable"`
}

// Clone deep-copies the settings so callers can roll back optimistic edits.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	return &Settings{
		AccountID:    s.AccountID,
		ClientID:     s.ClientID,
		Mapping:      s.Mapping.Clone(),
		AccountTable: s.AccountTable.Clone(),
	}
}

const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// Account is the identity record the store keeps per user.
type Account struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ManagedClient is a business an agent prepares returns for.
type ManagedClient struct {
	ID          string    `json:"id" db:"id"`
	AccountID   string    `json:"accountId" db:"account_id"`
	CompanyName string    `json:"companyName" db:"company_name"`
	IRDNumber   string    `json:"irdNumber" db:"ird_number"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

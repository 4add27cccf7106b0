package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/username/gstfolio/src/utils"
)

const (
	CategorySales          = "Sales"
	CategorySalesZeroRated = "Sales - Zero Rated"
	CategoryTransfers      = "Transfers"
	CategoryUncategorized  = "Uncategorized"
	CategoryDrawings       = "Drawings"

	DrawingsCode = "501"
)

var (
	ErrEmptyCategoryName    = errors.New("account name must not be empty")
	ErrDuplicateCategory    = errors.New("account name already exists in the table")
	ErrCategoryNotFound     = errors.New("account not found in the table")
	ErrCategoryNotDeletable = errors.New("account is a core account and cannot be deleted")
)

// AccountCategory is one line of the user's chart of accounts.
// Ratio is the GST-claimable fraction of an amount booked to it.
type AccountCategory struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Ratio       decimal.Decimal `json:"ratio" db:"ratio"`
	Code        string          `json:"code" db:"code"`
	IsDeletable bool            `json:"isDeletable" db:"is_deletable"`
}

// AccountTable is a chart of accounts with unique names.
type AccountTable []AccountCategory

func cat(id, name, ratio, code string) AccountCategory {
	return AccountCategory{ID: id, Name: name, Ratio: decimal.RequireFromString(ratio), Code: code}
}

// DefaultAccountTable returns a fresh copy of the chart every new account starts with.
func DefaultAccountTable() AccountTable {
	return AccountTable{
		cat("1", CategorySales, "1.0", "200"),
		cat("2", CategorySalesZeroRated, "0.0", "205"),
		cat("3", "Purchases", "1.0", "210"),
		cat("4", "Promotion & Marketing", "1.0", "290"),
		cat("5", "Entertainment", "0.5", "327"),
		cat("6", "General Expenses", "1.0", "335"),
		cat("7", "Insurance", "1.0", "340"),
		cat("8", "Power", "1.0", "384"),
		cat("9", "Motor Vehicle Expenses", "0.25", "410"),
		cat("10", "Home Office Expenses", "0.25", "425"),
		cat("11", "Rates", "1.0", "440"),
		cat("12", "Staff Expenses", "1.0", "457"),
		cat("13", "Mobile Phone", "1.0", "464"),
		cat("14", "Travel - National", "1.0", "469"),
		cat("15", "Travel - International", "0.0", "470"),
		cat("17", "GST Payment or Refund", "0.0", "630"),
		cat("18", CategoryTransfers, "0.0", "997"),
		cat("19", CategoryUncategorized, "0.0", "998"),
	}
}

// Lookup finds a category by exact name.
func (t AccountTable) Lookup(name string) (AccountCategory, bool) {
	for _, c := range t {
		if c.Name == name {
			return c, true
		}
	}
	return AccountCategory{}, false
}

// Resolve returns the ratio and code for a category name. A miss is not an
// error: it resolves to ratio 0 and an empty code.
func (t AccountTable) Resolve(name string) (decimal.Decimal, string) {
	if c, ok := t.Lookup(name); ok {
		return c.Ratio, c.Code
	}
	return decimal.Zero, ""
}

// Clone returns an independent copy of the table.
func (t AccountTable) Clone() AccountTable {
	if t == nil {
		return nil
	}
	out := make(AccountTable, len(t))
	copy(out, t)
	return out
}

// Sorted returns the table ordered by code (numeric-aware, empty codes last),
// then by name.
func (t AccountTable) Sorted() AccountTable {
	out := t.Clone()
	cmp := utils.NewCodeComparer()
	sort.SliceStable(out, func(i, j int) bool {
		if c := cmp.Compare(out[i].Code, out[j].Code); c != 0 {
			return c < 0
		}
		return cmp.CompareText(out[i].Name, out[j].Name) < 0
	})
	return out
}

// CategoryNames lists names in display order, for category pickers.
func (t AccountTable) CategoryNames() []string {
	sorted := t.Sorted()
	names := make([]string, len(sorted))
	for i, c := range sorted {
		names[i] = c.Name
	}
	return names
}

// Normalize validates a user-edited table: names are trimmed and must be
// unique and non-empty, ratios are clamped to [0,1], missing ids are assigned
// and an "Uncategorized" fallback is re-added when absent.
func (t AccountTable) Normalize() (AccountTable, error) {
	out := make(AccountTable, 0, len(t)+1)
	seen := make(map[string]bool, len(t))
	for _, c := range t {
		c.Name = strings.TrimSpace(c.Name)
		c.Code = strings.TrimSpace(c.Code)
		if c.Name == "" {
			return nil, ErrEmptyCategoryName
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, c.Name)
		}
		seen[c.Name] = true
		c.Ratio = ClampRatio(c.Ratio)
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		out = append(out, c)
	}
	if !seen[CategoryUncategorized] {
		out = append(out, cat(uuid.NewString(), CategoryUncategorized, "0", "998"))
	}
	return out, nil
}

// ClampRatio bounds a claim ratio to [0,1].
func ClampRatio(r decimal.Decimal) decimal.Decimal {
	if r.IsNegative() {
		return decimal.Zero
	}
	if r.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return r
}

// Add appends a new deletable account and returns the new table and category.
func (t AccountTable) Add(name, code string, ratio decimal.Decimal) (AccountTable, AccountCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, AccountCategory{}, ErrEmptyCategoryName
	}
	if _, exists := t.Lookup(name); exists {
		return nil, AccountCategory{}, fmt.Errorf("%w: %q", ErrDuplicateCategory, name)
	}
	c := AccountCategory{
		ID:          uuid.NewString(),
		Name:        name,
		Ratio:       ClampRatio(ratio),
		Code:        strings.TrimSpace(code),
		IsDeletable: true,
	}
	return append(t.Clone(), c), c, nil
}

// Update replaces the category with the same id.
func (t AccountTable) Update(c AccountCategory) (AccountTable, error) {
	out := t.Clone()
	for i := range out {
		if out[i].ID != c.ID {
			continue
		}
		c.IsDeletable = out[i].IsDeletable
		out[i] = c
		return out.Normalize()
	}
	return nil, fmt.Errorf("%w: id %s", ErrCategoryNotFound, c.ID)
}

// Delete removes a deletable category by id.
func (t AccountTable) Delete(id string) (AccountTable, error) {
	for i, c := range t {
		if c.ID != id {
			continue
		}
		if !c.IsDeletable {
			return nil, fmt.Errorf("%w: %q", ErrCategoryNotDeletable, c.Name)
		}
		out := make(AccountTable, 0, len(t)-1)
		out = append(out, t[:i]...)
		return append(out, t[i+1:]...), nil
	}
	return nil, fmt.Errorf("%w: id %s", ErrCategoryNotFound, id)
}

package postgres

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// orderColumns is the full select list of the orders table.
var orderColumns = []string{
	"id", "quote_id", "client_id", "supplier_id", "amount", "status", "items",
	"payment_reference", "payment_notes", "payment_submitted_at", "payment_confirmed_at",
	"payment_confirmed_by", "payment_receipt_url",
	"admin_verified", "admin_verified_by", "admin_verified_at",
	"created_at", "updated_at",
}

// optionalOrderColumns may be absent on databases created by older
// releases. The value is the expression selected in their place.
var optionalOrderColumns = map[string]string{
	"items":                "NULL",
	"payment_reference":    "NULL",
	"payment_notes":        "NULL",
	"payment_submitted_at": "NULL",
	"payment_confirmed_at": "NULL",
	"payment_confirmed_by": "NULL",
	"payment_receipt_url":  "NULL",
	"admin_verified":       "FALSE",
	"admin_verified_by":    "NULL",
	"admin_verified_at":    "NULL",
}

var undefinedColumnPattern = regexp.MustCompile(`column "([^"]+)"`)

// columnSet tracks optional order columns known to be missing. The zero
// value assumes every column exists.
type columnSet struct {
	mu      sync.RWMutex
	missing map[string]struct{}
}

func (c *columnSet) has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, gone := c.missing[name]
	return !gone
}

func (c *columnSet) forget(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.missing == nil {
		c.missing = make(map[string]struct{})
	}
	c.missing[name] = struct{}{}
}

func (c *columnSet) unavailable() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.missing))
	for col := range c.missing {
		out = append(out, col)
	}
	sort.Strings(out)
	return out
}

func (c *columnSet) selectList() string {
	parts := make([]string, len(orderColumns))
	for i, col := range orderColumns {
		if fallback, optional := optionalOrderColumns[col]; optional && !c.has(col) {
			parts[i] = fallback + " AS " + col
			continue
		}
		parts[i] = col
	}
	return strings.Join(parts, ", ")
}

// probeOrderColumns reads the orders table definition once. An empty result
// (for example missing catalog privileges) keeps the optimistic default.
func (s *Storage) probeOrderColumns(ctx context.Context) error {
	const query = `SELECT column_name FROM information_schema.columns
                   WHERE table_schema = current_schema() AND table_name = 'orders'`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("probe order columns: %w", err)
	}
	defer rows.Close()

	present := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("probe order columns: %w", err)
		}
		present[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("probe order columns: %w", err)
	}
	if len(present) == 0 {
		return nil
	}

	var missing []string
	for col := range optionalOrderColumns {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)
	for _, col := range missing {
		s.columns.forget(col)
		s.logger.Warn("order column unavailable, writes will skip it", "field", col)
	}
	return nil
}

// UnavailableOrderColumns lists optional order columns that writes skip.
func (s *Storage) UnavailableOrderColumns() []string {
	return s.columns.unavailable()
}

// undefinedColumn extracts the column named by a 42703 error.
func undefinedColumn(err error) (string, bool) {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != codeUndefinedColumn {
		return "", false
	}
	m := undefinedColumnPattern.FindStringSubmatch(pgErr.Message)
	if m == nil {
		return "", false
	}
	return m[1], true
}

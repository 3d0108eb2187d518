package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// ExportData is the JSON document produced by ExportJSON and accepted by
// ImportJSON.
type ExportData struct {
	Accounts     []Account     `json:"accounts"`
	Categories   []Category    `json:"categories"`
	Transactions []Transaction `json:"transactions"`
	Budgets      []Budget      `json:"budgets"`
}

// ExportJSON serializes all data as a pretty-printed JSON document. Account
// balances are the recomputed values, and transactions go through the default
// end-of-month filter, same as any other read.
func (s *Store) ExportJSON(ctx context.Context) ([]byte, error) {
	accounts, err := s.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExportJSON: %w", err)
	}
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExportJSON: %w", err)
	}
	transactions, err := s.Transactions(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("ExportJSON: %w", err)
	}
	budgets, err := s.Budgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExportJSON: %w", err)
	}

	doc := ExportData{
		Accounts:     accounts,
		Categories:   categories,
		Transactions: transactions,
		Budgets:      budgets,
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ExportJSON: marshal: %w", err)
	}
	return out, nil
}

// ImportJSON replaces all stored data with the document's contents,
// preserving identifiers. Any of the four arrays may be absent and is treated
// as empty. From the caller's point of view the replacement is atomic: the
// snapshot is persisted once, after all rows are in.
func (s *Store) ImportJSON(ctx context.Context, data []byte) error {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return err
	}

	var doc ExportData
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("ImportJSON: parse: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"transactions", "budgets", "categories", "accounts"} {
		if _, err := s.conn.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("ImportJSON: clear %s: %w", table, err)
		}
	}

	for _, acc := range doc.Accounts {
		_, err := s.conn.ExecContext(ctx,
			"INSERT INTO accounts (id, name, type, balance, currency) VALUES (?, ?, ?, ?, ?)",
			acc.ID, acc.Name, acc.Type, acc.Balance, acc.Currency)
		if err != nil {
			return fmt.Errorf("ImportJSON: account %s: %w", acc.ID, err)
		}
	}
	for _, cat := range doc.Categories {
		_, err := s.conn.ExecContext(ctx,
			"INSERT INTO categories (id, name, type, icon, color) VALUES (?, ?, ?, ?, ?)",
			cat.ID, cat.Name, cat.Type, cat.Icon, cat.Color)
		if err != nil {
			return fmt.Errorf("ImportJSON: category %s: %w", cat.ID, err)
		}
	}
	for _, txn := range doc.Transactions {
		_, err := s.conn.ExecContext(ctx,
			"INSERT INTO transactions (id, accountId, categoryId, type, amount, description, date, toAccountId) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			txn.ID, txn.AccountID, txn.CategoryID, txn.Type, txn.Amount,
			txn.Description, txn.Date, nullable(txn.ToAccountID))
		if err != nil {
			return fmt.Errorf("ImportJSON: transaction %s: %w", txn.ID, err)
		}
	}
	for _, bud := range doc.Budgets {
		_, err := s.conn.ExecContext(ctx,
			"INSERT INTO budgets (id, name, categoryId, limitAmount, period, startDate) VALUES (?, ?, ?, ?, ?, ?)",
			bud.ID, bud.Name, bud.CategoryID, bud.LimitAmount, bud.Period, bud.StartDate)
		if err != nil {
			return fmt.Errorf("ImportJSON: budget %s: %w", bud.ID, err)
		}
	}

	s.persist()
	return nil
}

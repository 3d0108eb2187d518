package store

import (
	"context"
	"fmt"
)

// Demo data inserted on first-ever startup so the app is not empty. Seeding
// is suppressed once the user has explicitly cleared all data (KeyCleared),
// until they create real data again.
var defaultAccounts = []Account{
	{ID: "acc_1", Name: "Checking", Type: AccountChecking, Balance: 5000, Currency: "USD"},
	{ID: "acc_2", Name: "Savings", Type: AccountSavings, Balance: 10000, Currency: "USD"},
	{ID: "acc_3", Name: "Credit Card", Type: AccountCreditCard, Balance: 2500, Currency: "USD"},
}

var defaultCategories = []Category{
	{ID: "cat_1", Name: "Salary", Type: TypeIncome, Icon: "💰", Color: "#10b981"},
	{ID: "cat_2", Name: "Bonus", Type: TypeIncome, Icon: "🎉", Color: "#10b981"},
	{ID: "cat_3", Name: "Freelance", Type: TypeIncome, Icon: "💻", Color: "#10b981"},
	{ID: "cat_4", Name: "Food & Dining", Type: TypeExpense, Icon: "🍔", Color: "#ef4444"},
	{ID: "cat_5", Name: "Transportation", Type: TypeExpense, Icon: "🚗", Color: "#ef4444"},
	{ID: "cat_6", Name: "Shopping", Type: TypeExpense, Icon: "🛍️", Color: "#ef4444"},
	{ID: "cat_7", Name: "Entertainment", Type: TypeExpense, Icon: "🎬", Color: "#ef4444"},
	{ID: "cat_8", Name: "Utilities", Type: TypeExpense, Icon: "💡", Color: "#ef4444"},
	{ID: "cat_9", Name: "Health", Type: TypeExpense, Icon: "🏥", Color: "#ef4444"},
	{ID: "cat_10", Name: "Transfer Out", Type: TypeTransfer, Icon: "➡️", Color: "#3b82f6"},
}

func (s *Store) seedDefaults(ctx context.Context) error {
	if _, cleared, err := s.storage.Get(KeyCleared); err != nil {
		return fmt.Errorf("seedDefaults: read cleared flag: %w", err)
	} else if cleared {
		return nil
	}

	var count int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		return fmt.Errorf("seedDefaults: count accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, acc := range defaultAccounts {
		_, err := s.conn.ExecContext(ctx,
			"INSERT INTO accounts (id, name, type, balance, currency) VALUES (?, ?, ?, ?, ?)",
			acc.ID, acc.Name, acc.Type, acc.Balance, acc.Currency)
		if err != nil {
			return fmt.Errorf("seedDefaults: account %s: %w", acc.ID, err)
		}
	}
	for _, cat := range defaultCategories {
		_, err := s.conn.ExecContext(ctx,
			"INSERT INTO categories (id, name, type, icon, color) VALUES (?, ?, ?, ?, ?)",
			cat.ID, cat.Name, cat.Type, cat.Icon, cat.Color)
		if err != nil {
			return fmt.Errorf("seedDefaults: category %s: %w", cat.ID, err)
		}
	}

	s.persist()
	return nil
}

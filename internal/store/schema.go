package store

import (
	"context"
	"database/sql"
	"fmt"
)

const transactionsDDL = `
	CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		accountId TEXT NOT NULL,
		categoryId TEXT NOT NULL,
		type TEXT NOT NULL,
		amount REAL NOT NULL,
		description TEXT,
		date DATETIME NOT NULL,
		toAccountId TEXT,
		createdAt DATETIME DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME,
		FOREIGN KEY (accountId) REFERENCES accounts(id),
		FOREIGN KEY (categoryId) REFERENCES categories(id),
		FOREIGN KEY (toAccountId) REFERENCES accounts(id)
	)`

// createTables installs the full schema on a fresh database.
func (s *Store) createTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			balance REAL NOT NULL,
			currency TEXT NOT NULL,
			createdAt DATETIME DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			icon TEXT,
			color TEXT,
			createdAt DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`DROP TABLE IF EXISTS transactions`,
		transactionsDDL,
		`DROP TABLE IF EXISTS budgets`,
		`CREATE TABLE budgets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			categoryId TEXT NOT NULL,
			limitAmount REAL NOT NULL,
			period TEXT NOT NULL,
			startDate DATETIME,
			createdAt DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (categoryId) REFERENCES categories(id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("createTables: %w", err)
		}
	}
	s.persist()
	return nil
}

// evolveSchema upgrades a restored snapshot in place. Snapshots written
// before transfer support lack the toAccountId column on transactions; those
// get their rows backed up, the table recreated and the rows reinserted with
// a NULL toAccountId. Running it on an already-current snapshot changes
// nothing.
func (s *Store) evolveSchema(ctx context.Context) error {
	hasColumn, err := s.transactionsHaveToAccountID(ctx)
	if err != nil {
		return fmt.Errorf("evolveSchema: inspect transactions: %w", err)
	}
	if hasColumn {
		s.persist()
		return nil
	}

	backup, err := s.backupLegacyTransactions(ctx)
	if err != nil {
		return fmt.Errorf("evolveSchema: backup transactions: %w", err)
	}

	if _, err := s.conn.ExecContext(ctx, "DROP TABLE IF EXISTS transactions"); err != nil {
		return fmt.Errorf("evolveSchema: drop transactions: %w", err)
	}
	if _, err := s.conn.ExecContext(ctx, transactionsDDL); err != nil {
		return fmt.Errorf("evolveSchema: recreate transactions: %w", err)
	}

	for _, row := range backup {
		_, err := s.conn.ExecContext(ctx,
			`INSERT INTO transactions (id, accountId, categoryId, type, amount, description, date, toAccountId, createdAt, updatedAt)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID, row.AccountID, row.CategoryID, row.Type, row.Amount,
			row.Description, row.Date, nil, row.CreatedAt, nullable(row.UpdatedAt))
		if err != nil {
			return fmt.Errorf("evolveSchema: restore transaction %s: %w", row.ID, err)
		}
	}

	s.log.Info().Int("restored", len(backup)).Msg("updated transactions table schema with toAccountId column")
	s.persist()
	return nil
}

func (s *Store) transactionsHaveToAccountID(ctx context.Context) (bool, error) {
	rows, err := s.conn.QueryContext(ctx, "PRAGMA table_info(transactions)")
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return false, err
		}
		if name == "toAccountId" {
			return true, nil
		}
	}
	return false, rows.Err()
}

func (s *Store) backupLegacyTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT id, accountId, categoryId, type, amount, description, date, createdAt, updatedAt FROM transactions")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var backup []Transaction
	for rows.Next() {
		var (
			t           Transaction
			description sql.NullString
			updatedAt   sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.Type, &t.Amount,
			&description, &t.Date, &t.CreatedAt, &updatedAt); err != nil {
			return nil, err
		}
		t.Description = description.String
		t.UpdatedAt = updatedAt.String
		backup = append(backup, t)
	}
	return backup, rows.Err()
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

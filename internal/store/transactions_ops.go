package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Transactions returns transactions matching the filter, ordered by date
// descending. When no end date is given, results are cut off at the end of
// the current calendar month; future-dated transactions only show up when a
// caller asks for them explicitly.
func (s *Store) Transactions(ctx context.Context, filter Filter) ([]Transaction, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return []Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	query := "SELECT id, accountId, categoryId, type, amount, description, date, toAccountId, createdAt, updatedAt FROM transactions WHERE 1=1"
	args := []interface{}{}

	if filter.AccountID != "" {
		query += " AND accountId = ?"
		args = append(args, filter.AccountID)
	}
	if filter.CategoryID != "" {
		query += " AND categoryId = ?"
		args = append(args, filter.CategoryID)
	}
	if filter.StartDate != nil {
		query += " AND date >= ?"
		args = append(args, isoTime(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query += " AND date <= ?"
		args = append(args, isoTime(*filter.EndDate))
	} else {
		query += " AND date <= ?"
		args = append(args, isoTime(endOfCurrentMonth(time.Now())))
	}
	query += " ORDER BY date DESC"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Transactions: query: %w", err)
	}
	defer rows.Close()

	transactions := []Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("Transactions: scan: %w", err)
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

// Transaction returns a transaction by id, or nil when not found.
func (s *Store) Transaction(ctx context.Context, id string) (*Transaction, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getTransaction(ctx, id)
}

func (s *Store) getTransaction(ctx context.Context, id string) (*Transaction, error) {
	row := s.conn.QueryRowContext(ctx,
		"SELECT id, accountId, categoryId, type, amount, description, date, toAccountId, createdAt, updatedAt FROM transactions WHERE id = ?", id)
	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Transaction: %w", err)
	}
	return &txn, nil
}

// CreateTransaction inserts a transaction and adjusts the source account's
// cached balance (+amount for income, -amount for expense). For an expense
// leg carrying a destination account, the destination's cached balance is
// credited by the same amount: money leaves the source and arrives there.
func (s *Store) CreateTransaction(ctx context.Context, spec TransactionSpec) (*Transaction, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearClearedFlag()
	id := s.ids.NewID("txn")
	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO transactions (id, accountId, categoryId, type, amount, description, date, toAccountId) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, spec.AccountID, spec.CategoryID, spec.Type, spec.Amount,
		spec.Description, isoTime(spec.Date), nullable(spec.ToAccountID))
	if err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}

	account, err := s.getAccount(ctx, spec.AccountID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		balance := account.Balance
		switch spec.Type {
		case TypeIncome:
			balance += spec.Amount
		case TypeExpense:
			balance -= spec.Amount
		}
		if err := s.setAccountBalance(ctx, spec.AccountID, balance); err != nil {
			return nil, fmt.Errorf("CreateTransaction: adjust source balance: %w", err)
		}
	}

	if spec.ToAccountID != "" {
		toAccount, err := s.getAccount(ctx, spec.ToAccountID)
		if err != nil {
			return nil, err
		}
		// Only the expense leg moves money to the destination; the income
		// half of a transfer pair is its own row on the other account.
		if toAccount != nil && spec.Type == TypeExpense {
			if err := s.setAccountBalance(ctx, spec.ToAccountID, toAccount.Balance+spec.Amount); err != nil {
				return nil, fmt.Errorf("CreateTransaction: credit destination balance: %w", err)
			}
		}
	}

	s.persist()
	return s.getTransaction(ctx, id)
}

// UpdateTransaction applies partial changes and returns the updated
// transaction, or nil when the id does not exist. Cached account balances are
// deliberately not re-adjusted here: reads recompute balances from scratch,
// and the create/delete compensation asymmetry is part of the contract.
func (s *Store) UpdateTransaction(ctx context.Context, id string, update TransactionUpdate) (*Transaction, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getTransaction(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}

	merged := *current
	if update.AccountID != nil {
		merged.AccountID = *update.AccountID
	}
	if update.CategoryID != nil {
		merged.CategoryID = *update.CategoryID
	}
	if update.Type != nil {
		merged.Type = *update.Type
	}
	if update.Amount != nil {
		merged.Amount = *update.Amount
	}
	if update.Description != nil {
		merged.Description = *update.Description
	}
	if update.Date != nil {
		merged.Date = isoTime(*update.Date)
	}

	_, err = s.conn.ExecContext(ctx,
		"UPDATE transactions SET accountId = ?, categoryId = ?, type = ?, amount = ?, description = ?, date = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?",
		merged.AccountID, merged.CategoryID, merged.Type, merged.Amount, merged.Description, merged.Date, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateTransaction: %w", err)
	}
	s.persist()
	return s.getTransaction(ctx, id)
}

// DeleteTransaction removes a transaction and reverses its create-time effect
// on the source account's cached balance. Destination-side transfer credits
// are not reversed; that asymmetry is part of the contract, and read paths
// recompute balances anyway.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, err := s.getTransaction(ctx, id)
	if err != nil {
		return err
	}
	if txn != nil {
		account, err := s.getAccount(ctx, txn.AccountID)
		if err != nil {
			return err
		}
		if account != nil {
			balance := account.Balance
			switch txn.Type {
			case TypeIncome:
				balance -= txn.Amount
			case TypeExpense:
				balance += txn.Amount
			}
			if err := s.setAccountBalance(ctx, txn.AccountID, balance); err != nil {
				return fmt.Errorf("DeleteTransaction: reverse balance: %w", err)
			}
		}
	}

	if _, err := s.conn.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	s.persist()
	return nil
}

// CreateTransactionsBulk inserts a batch of transactions and applies one net
// balance delta per affected account, all inside a single database
// transaction. Destination-side transfer crediting is skipped on purpose: the
// migration driver pre-synthesizes reciprocal income legs, and crediting here
// would double-count them. On any failure the whole batch rolls back and the
// error is returned; a partial batch is never left committed. Returns the
// number of transactions inserted. The snapshot is persisted once, after
// commit.
func (s *Store) CreateTransactionsBulk(ctx context.Context, specs []TransactionSpec) (int, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return 0, err
	}
	if len(specs) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearClearedFlag()

	// Start from recomputed balances so the cached column converges on the
	// derived truth as batches land.
	accounts, err := s.listAccounts(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := isoTime(endOfCurrentMonth(time.Now()))
	balances := make(map[string]float64, len(accounts))
	for _, acc := range accounts {
		balance, err := s.recomputeBalance(ctx, acc.ID, cutoff)
		if err != nil {
			return 0, fmt.Errorf("CreateTransactionsBulk: recompute %s: %w", acc.ID, err)
		}
		balances[acc.ID] = balance
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("CreateTransactionsBulk: begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO transactions (id, accountId, categoryId, type, amount, description, date, toAccountId) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("CreateTransactionsBulk: prepare: %w", err)
	}

	deltas := map[string]float64{}
	count := 0
	for _, spec := range specs {
		id := s.ids.NewID("txn")
		_, err := stmt.ExecContext(ctx,
			id, spec.AccountID, spec.CategoryID, spec.Type, spec.Amount,
			spec.Description, isoTime(spec.Date), nullable(spec.ToAccountID))
		if err != nil {
			stmt.Close()
			_ = tx.Rollback()
			return 0, fmt.Errorf("CreateTransactionsBulk: insert: %w", err)
		}
		count++

		switch spec.Type {
		case TypeIncome:
			deltas[spec.AccountID] += spec.Amount
		case TypeExpense:
			deltas[spec.AccountID] -= spec.Amount
		}
	}
	stmt.Close()

	for accountID, delta := range deltas {
		_, err := tx.ExecContext(ctx,
			"UPDATE accounts SET balance = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?",
			balances[accountID]+delta, accountID)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("CreateTransactionsBulk: update balance %s: %w", accountID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("CreateTransactionsBulk: commit: %w", err)
	}
	s.persist()
	return count, nil
}

func scanTransaction(r rowScanner) (Transaction, error) {
	var (
		txn         Transaction
		description sql.NullString
		toAccountID sql.NullString
		createdAt   sql.NullString
		updatedAt   sql.NullString
	)
	err := r.Scan(&txn.ID, &txn.AccountID, &txn.CategoryID, &txn.Type, &txn.Amount,
		&description, &txn.Date, &toAccountID, &createdAt, &updatedAt)
	if err != nil {
		return Transaction{}, err
	}
	txn.Description = description.String
	txn.ToAccountID = toAccountID.String
	txn.CreatedAt = createdAt.String
	txn.UpdatedAt = updatedAt.String
	return txn, nil
}

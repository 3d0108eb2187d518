package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Accounts returns all accounts with their balances recomputed from
// transactions: sum of income minus sum of expense over transactions dated on
// or before the end of the current month, rounded once to 2 decimal places.
// The stored balance column is not touched; it is a cache, never the truth.
func (s *Store) Accounts(ctx context.Context) ([]Account, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return []Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.listAccounts(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := isoTime(endOfCurrentMonth(time.Now()))
	for i := range accounts {
		balance, err := s.recomputeBalance(ctx, accounts[i].ID, cutoff)
		if err != nil {
			return nil, fmt.Errorf("Accounts: recompute %s: %w", accounts[i].ID, err)
		}
		accounts[i].Balance = balance
	}
	return accounts, nil
}

func (s *Store) listAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT id, name, type, balance, currency, createdAt, updatedAt FROM accounts")
	if err != nil {
		return nil, fmt.Errorf("Accounts: query: %w", err)
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("Accounts: scan: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// recomputeBalance derives an account balance from its transactions up to the
// cutoff date. Accounts without matching transactions have balance 0,
// whatever the stored column says.
func (s *Store) recomputeBalance(ctx context.Context, accountID, cutoff string) (float64, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT type, amount FROM transactions WHERE accountId = ? AND date <= ? ORDER BY date",
		accountID, cutoff)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var balance float64
	for rows.Next() {
		var (
			txnType string
			amount  float64
		)
		if err := rows.Scan(&txnType, &amount); err != nil {
			return 0, err
		}
		switch txnType {
		case TypeIncome:
			balance += amount
		case TypeExpense:
			balance -= amount
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return round2(balance), nil
}

// Account returns the raw stored account row, or nil when not found. Unlike
// Accounts, the cached balance is returned as stored.
func (s *Store) Account(ctx context.Context, id string) (*Account, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getAccount(ctx, id)
}

func (s *Store) getAccount(ctx context.Context, id string) (*Account, error) {
	row := s.conn.QueryRowContext(ctx,
		"SELECT id, name, type, balance, currency, createdAt, updatedAt FROM accounts WHERE id = ?", id)
	acc, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Account: %w", err)
	}
	return &acc, nil
}

// CreateAccount inserts a new account and returns it.
func (s *Store) CreateAccount(ctx context.Context, spec AccountSpec) (*Account, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearClearedFlag()
	id := s.ids.NewID("acc")
	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO accounts (id, name, type, balance, currency) VALUES (?, ?, ?, ?, ?)",
		id, spec.Name, spec.Type, spec.Balance, spec.Currency)
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}
	s.persist()
	return s.getAccount(ctx, id)
}

// UpdateAccount applies partial changes and returns the updated account, or
// nil when the id does not exist.
func (s *Store) UpdateAccount(ctx context.Context, id string, update AccountUpdate) (*Account, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getAccount(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}

	merged := *current
	if update.Name != nil {
		merged.Name = *update.Name
	}
	if update.Type != nil {
		merged.Type = *update.Type
	}
	if update.Balance != nil {
		merged.Balance = *update.Balance
	}
	if update.Currency != nil {
		merged.Currency = *update.Currency
	}

	_, err = s.conn.ExecContext(ctx,
		"UPDATE accounts SET name = ?, type = ?, balance = ?, currency = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?",
		merged.Name, merged.Type, merged.Balance, merged.Currency, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateAccount: %w", err)
	}
	s.persist()
	return s.getAccount(ctx, id)
}

// DeleteAccount removes an account row. Transactions referencing it are left
// in place; read paths tolerate the dangling reference.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.execWithoutForeignKeys(ctx, "DELETE FROM accounts WHERE id = ?", id); err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}
	s.persist()
	return nil
}

// setAccountBalance updates the cached balance column. Callers hold s.mu and
// persist afterwards.
func (s *Store) setAccountBalance(ctx context.Context, id string, balance float64) error {
	_, err := s.conn.ExecContext(ctx,
		"UPDATE accounts SET balance = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?",
		balance, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(r rowScanner) (Account, error) {
	var (
		acc       Account
		createdAt sql.NullString
		updatedAt sql.NullString
	)
	err := r.Scan(&acc.ID, &acc.Name, &acc.Type, &acc.Balance, &acc.Currency, &createdAt, &updatedAt)
	if err != nil {
		return Account{}, err
	}
	acc.CreatedAt = createdAt.String
	acc.UpdatedAt = updatedAt.String
	return acc, nil
}

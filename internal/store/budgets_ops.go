package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Budgets returns all budgets.
func (s *Store) Budgets(ctx context.Context) ([]Budget, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return []Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.QueryContext(ctx,
		"SELECT id, name, categoryId, limitAmount, period, startDate, createdAt FROM budgets")
	if err != nil {
		return nil, fmt.Errorf("Budgets: query: %w", err)
	}
	defer rows.Close()

	budgets := []Budget{}
	for rows.Next() {
		bud, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("Budgets: scan: %w", err)
		}
		budgets = append(budgets, bud)
	}
	return budgets, rows.Err()
}

// Budget returns a budget by id, or nil when not found.
func (s *Store) Budget(ctx context.Context, id string) (*Budget, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getBudget(ctx, id)
}

func (s *Store) getBudget(ctx context.Context, id string) (*Budget, error) {
	row := s.conn.QueryRowContext(ctx,
		"SELECT id, name, categoryId, limitAmount, period, startDate, createdAt FROM budgets WHERE id = ?", id)
	bud, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Budget: %w", err)
	}
	return &bud, nil
}

// CreateBudget inserts a new budget and returns it. A zero StartDate defaults
// to now.
func (s *Store) CreateBudget(ctx context.Context, spec BudgetSpec) (*Budget, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearClearedFlag()
	start := spec.StartDate
	if start.IsZero() {
		start = time.Now()
	}

	id := s.ids.NewID("bud")
	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO budgets (id, name, categoryId, limitAmount, period, startDate) VALUES (?, ?, ?, ?, ?, ?)",
		id, spec.Name, spec.CategoryID, spec.Limit, spec.Period, isoTime(start))
	if err != nil {
		return nil, fmt.Errorf("CreateBudget: %w", err)
	}
	s.persist()
	return s.getBudget(ctx, id)
}

// UpdateBudget applies partial changes and returns the updated budget, or nil
// when the id does not exist.
func (s *Store) UpdateBudget(ctx context.Context, id string, update BudgetUpdate) (*Budget, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getBudget(ctx, id)
	if err != nil || current == nil {
		return nil, err
	}

	merged := *current
	if update.Name != nil {
		merged.Name = *update.Name
	}
	if update.CategoryID != nil {
		merged.CategoryID = *update.CategoryID
	}
	if update.Limit != nil {
		merged.LimitAmount = *update.Limit
	}
	if update.Period != nil {
		merged.Period = *update.Period
	}
	if update.StartDate != nil {
		merged.StartDate = isoTime(*update.StartDate)
	}

	_, err = s.conn.ExecContext(ctx,
		"UPDATE budgets SET name = ?, categoryId = ?, limitAmount = ?, period = ?, startDate = ? WHERE id = ?",
		merged.Name, merged.CategoryID, merged.LimitAmount, merged.Period, merged.StartDate, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateBudget: %w", err)
	}
	s.persist()
	return s.getBudget(ctx, id)
}

// DeleteBudget removes a budget row.
func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id); err != nil {
		return fmt.Errorf("DeleteBudget: %w", err)
	}
	s.persist()
	return nil
}

func scanBudget(r rowScanner) (Budget, error) {
	var (
		bud       Budget
		startDate sql.NullString
		createdAt sql.NullString
	)
	err := r.Scan(&bud.ID, &bud.Name, &bud.CategoryID, &bud.LimitAmount, &bud.Period, &startDate, &createdAt)
	if err != nil {
		return Budget{}, err
	}
	bud.StartDate = startDate.String
	bud.CreatedAt = createdAt.String
	return bud, nil
}

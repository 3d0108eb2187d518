package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Categories returns all categories.
func (s *Store) Categories(ctx context.Context) ([]Category, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return []Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryCategories(ctx, "SELECT id, name, type, icon, color, createdAt FROM categories")
}

// CategoriesByType returns categories with the given type.
func (s *Store) CategoriesByType(ctx context.Context, categoryType string) ([]Category, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return []Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryCategories(ctx,
		"SELECT id, name, type, icon, color, createdAt FROM categories WHERE type = ?", categoryType)
}

func (s *Store) queryCategories(ctx context.Context, query string, args ...interface{}) ([]Category, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Categories: query: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("Categories: scan: %w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// Category returns a category by id, or nil when not found.
func (s *Store) Category(ctx context.Context, id string) (*Category, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCategory(ctx, id)
}

func (s *Store) getCategory(ctx context.Context, id string) (*Category, error) {
	row := s.conn.QueryRowContext(ctx,
		"SELECT id, name, type, icon, color, createdAt FROM categories WHERE id = ?", id)
	cat, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Category: %w", err)
	}
	return &cat, nil
}

// CreateCategory inserts a new category and returns it.
func (s *Store) CreateCategory(ctx context.Context, spec CategorySpec) (*Category, error) {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearClearedFlag()
	id := s.ids.NewID("cat")
	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO categories (id, name, type, icon, color) VALUES (?, ?, ?, ?, ?)",
		id, spec.Name, spec.Type, spec.Icon, spec.Color)
	if err != nil {
		return nil, fmt.Errorf("CreateCategory: %w", err)
	}
	s.persist()
	return s.getCategory(ctx, id)
}

// DeleteCategory removes a category row. Transactions and budgets referencing
// it are left in place; read paths tolerate the dangling reference.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.execWithoutForeignKeys(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return fmt.Errorf("DeleteCategory: %w", err)
	}
	s.persist()
	return nil
}

func scanCategory(r rowScanner) (Category, error) {
	var (
		cat       Category
		icon      sql.NullString
		color     sql.NullString
		createdAt sql.NullString
	)
	err := r.Scan(&cat.ID, &cat.Name, &cat.Type, &icon, &color, &createdAt)
	if err != nil {
		return Category{}, err
	}
	cat.Icon = icon.String
	cat.Color = color.String
	cat.CreatedAt = createdAt.String
	return cat, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ddanshin/kopilka/internal/budget"
	"github.com/ddanshin/kopilka/internal/category"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// SetBudget upserts the budget for its category and period. The (category,
// period) pair is unique, so setting an existing pair replaces the limit.
func (s *Store) SetBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		INSERT INTO budgets (category, limit_cents, period, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (category, period)
		DO UPDATE SET limit_cents = EXCLUDED.limit_cents, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, b.Category, b.LimitCents, b.Period).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting budget: %w", err)
	}

	return nil
}

func (s *Store) GetBudget(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	query := `
		SELECT id, category, limit_cents, period, created_at, updated_at
		FROM budgets
		WHERE id = $1
	`

	b, err := scanBudget(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting budget: %w", err)
	}

	return b, nil
}

func (s *Store) ListBudgets(ctx context.Context) ([]*budget.Budget, error) {
	query := `
		SELECT id, category, limit_cents, period, created_at, updated_at
		FROM budgets
		ORDER BY category, period
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*budget.Budget

	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}

		budgets = append(budgets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget rows: %w", err)
	}

	return budgets, nil
}

func (s *Store) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return budget.ErrNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBudget(s scanner) (*budget.Budget, error) {
	var b budget.Budget

	var categoryStr, periodStr string

	if err := s.Scan(&b.ID, &categoryStr, &b.LimitCents, &periodStr, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}

	b.Category = category.Category(categoryStr)
	b.Period = budget.Period(periodStr)

	return &b, nil
}

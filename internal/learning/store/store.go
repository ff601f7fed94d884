package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/learning"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateCorrection(ctx context.Context, c *learning.Correction) error {
	query := `
		INSERT INTO category_corrections (transaction_id, original_category, corrected_category, confidence, merchant_normalized, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.TransactionID,
		c.OriginalCategory,
		c.CorrectedCategory,
		c.Confidence,
		c.Merchant,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating correction: %w", err)
	}

	return nil
}

func (s *Store) CountCorrections(ctx context.Context, merchant string) (map[category.Category]int, error) {
	query := `
		SELECT corrected_category, COUNT(*)
		FROM category_corrections
		WHERE merchant_normalized = $1
		GROUP BY corrected_category
	`

	rows, err := s.db.QueryContext(ctx, query, merchant)
	if err != nil {
		return nil, fmt.Errorf("counting corrections: %w", err)
	}
	defer rows.Close()

	counts := make(map[category.Category]int)

	for rows.Next() {
		var cat string

		var n int

		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("scanning correction count: %w", err)
		}

		counts[category.Category(cat)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating correction counts: %w", err)
	}

	return counts, nil
}

func (s *Store) UpsertMapping(ctx context.Context, m *learning.Mapping) error {
	query := `
		INSERT INTO merchant_category_mappings (merchant_normalized, learned_category, correction_count, confidence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (merchant_normalized)
		DO UPDATE SET learned_category = EXCLUDED.learned_category,
		              correction_count = EXCLUDED.correction_count,
		              confidence = EXCLUDED.confidence,
		              updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		m.Merchant,
		m.Category,
		m.CorrectionCount,
		m.Confidence,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting mapping: %w", err)
	}

	return nil
}

func (s *Store) FindMapping(ctx context.Context, merchant string) (*learning.Mapping, error) {
	query := `
		SELECT merchant_normalized, learned_category, correction_count, confidence, created_at, updated_at
		FROM merchant_category_mappings
		WHERE merchant_normalized = $1
	`

	var m learning.Mapping

	var cat string

	err := s.db.QueryRowContext(ctx, query, merchant).
		Scan(&m.Merchant, &cat, &m.CorrectionCount, &m.Confidence, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("finding mapping: %w", err)
	}

	m.Category = category.Category(cat)

	return &m, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/report"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// MonthlySummaries aggregates expense rows into per-month summaries with a
// per-category breakdown, newest month first.
func (s *Store) MonthlySummaries(ctx context.Context, year int) ([]*report.Monthly, error) {
	query := `
		SELECT EXTRACT(YEAR FROM date)::int, EXTRACT(MONTH FROM date)::int,
		       category, SUM(amount), COUNT(*)
		FROM transactions
		WHERE deleted_at IS NULL AND type = 'expense'
	`

	var args []any

	if year != 0 {
		query += " AND EXTRACT(YEAR FROM date)::int = $1"

		args = append(args, year)
	}

	query += " GROUP BY 1, 2, 3"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying monthly summaries: %w", err)
	}
	defer rows.Close()

	type monthKey struct {
		year  int
		month int
	}

	byMonth := make(map[monthKey]*report.Monthly)

	for rows.Next() {
		var (
			y, m, count int
			cat         string
			total       int64
		)

		if err := rows.Scan(&y, &m, &cat, &total, &count); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}

		k := monthKey{year: y, month: m}

		summary, ok := byMonth[k]
		if !ok {
			summary = &report.Monthly{
				Year:       y,
				Month:      m,
				ByCategory: make(map[category.Category]int64),
			}
			byMonth[k] = summary
		}

		summary.TotalCents += total
		summary.Count += count
		summary.ByCategory[category.Category(cat)] += total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary rows: %w", err)
	}

	summaries := make([]*report.Monthly, 0, len(byMonth))
	for _, summary := range byMonth {
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Year != summaries[j].Year {
			return summaries[i].Year > summaries[j].Year
		}

		return summaries[i].Month > summaries[j].Month
	})

	return summaries, nil
}

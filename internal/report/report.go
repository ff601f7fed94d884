// Package report aggregates transactions into spending summaries.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ddanshin/kopilka/internal/cache"
	"github.com/ddanshin/kopilka/internal/category"
)

// Monthly is the spending summary for one calendar month.
type Monthly struct {
	Year       int                         `json:"year"`
	Month      int                         `json:"month"`
	TotalCents int64                       `json:"total_cents"`
	Count      int                         `json:"count"`
	ByCategory map[category.Category]int64 `json:"by_category"`
}

//go:generate mockgen -source=report.go -destination=repository_mock.go -package=report
type Repository interface {
	// MonthlySummaries aggregates expenses per month, optionally limited
	// to one year (0 means all years).
	MonthlySummaries(ctx context.Context, year int) ([]*Monthly, error)
}

const cacheTTL = 5 * time.Minute

// CachePrefix is the key prefix under which report summaries are cached.
// Writers invalidate it after committing transactions.
const CachePrefix = "reports:"

type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

func NewService(repo Repository, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

// MonthlyReports returns per-month summaries, newest first, served from
// cache when fresh. Cache failures degrade to the database silently.
func (s *Service) MonthlyReports(ctx context.Context, year int) ([]*Monthly, error) {
	key := cacheKey(year)

	var cached []*Monthly
	if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("report cache read failed", "key", key, "error", err)
	}

	reports, err := s.repo.MonthlySummaries(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("loading monthly summaries: %w", err)
	}

	if err := s.cache.SetJSON(ctx, key, reports, cacheTTL); err != nil {
		s.logger.Warn("report cache write failed", "key", key, "error", err)
	}

	return reports, nil
}

func cacheKey(year int) string {
	if year == 0 {
		return CachePrefix + "monthly:all"
	}

	return fmt.Sprintf("%smonthly:%d", CachePrefix, year)
}

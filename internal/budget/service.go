package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ddanshin/kopilka/internal/category"
)

//go:generate mockgen -source=service.go -destination=mocks.go -package=budget
type Repository interface {
	SetBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, id uuid.UUID) (*Budget, error)
	ListBudgets(ctx context.Context) ([]*Budget, error)
	DeleteBudget(ctx context.Context, id uuid.UUID) error
}

// Spender reports expense totals per category over a date range. The
// transaction service satisfies it.
type Spender interface {
	SumByCategory(ctx context.Context, start, end time.Time) (map[category.Category]int64, error)
}

type Service struct {
	repo    Repository
	spender Spender
}

func NewService(repo Repository, spender Spender) *Service {
	return &Service{repo: repo, spender: spender}
}

type SetParams struct {
	Category   category.Category
	LimitCents int64
	Period     Period
}

// Set creates or replaces the budget for a category and period.
func (s *Service) Set(ctx context.Context, params SetParams) (*Budget, error) {
	if params.LimitCents <= 0 {
		return nil, ErrInvalidLimit
	}

	period := params.Period
	if period == "" {
		period = PeriodMonthly
	}

	if !ValidPeriod(period) {
		return nil, fmt.Errorf("unknown budget period %q", period)
	}

	b := &Budget{
		Category:   category.Normalize(params.Category),
		LimitCents: params.LimitCents,
		Period:     period,
	}
	if err := s.repo.SetBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Budget, error) {
	return s.repo.GetBudget(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Budget, error) {
	return s.repo.ListBudgets(ctx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteBudget(ctx, id)
}

// Statuses returns every budget with its spending in the window containing
// the reference instant. Monthly budgets use the calendar month, weekly ones
// the Monday-to-Sunday week.
func (s *Service) Statuses(ctx context.Context, at time.Time) ([]*Status, error) {
	budgets, err := s.repo.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}

	if len(budgets) == 0 {
		return nil, nil
	}

	sums := make(map[Period]map[category.Category]int64, 2)

	for _, b := range budgets {
		if _, done := sums[b.Period]; done {
			continue
		}

		start, end := window(b.Period, at)

		byCat, err := s.spender.SumByCategory(ctx, start, end)
		if err != nil {
			return nil, fmt.Errorf("summing %s spending: %w", b.Period, err)
		}

		sums[b.Period] = byCat
	}

	statuses := make([]*Status, 0, len(budgets))

	for _, b := range budgets {
		spent := sums[b.Period][b.Category]

		var pct float64
		if b.LimitCents > 0 {
			pct = float64(spent) / float64(b.LimitCents) * 100
		}

		statuses = append(statuses, &Status{
			Budget:         b,
			SpentCents:     spent,
			RemainingCents: b.LimitCents - spent,
			Percentage:     pct,
			Exceeded:       spent > b.LimitCents,
		})
	}

	return statuses, nil
}

// window returns the inclusive date range of the budget period containing
// the reference instant, in UTC.
func window(p Period, at time.Time) (time.Time, time.Time) {
	at = at.UTC()

	if p == PeriodWeekly {
		// Weeks run Monday through Sunday.
		offset := (int(at.Weekday()) + 6) % 7
		monday := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -offset)

		return monday, monday.AddDate(0, 0, 6).Add(24*time.Hour - time.Second)
	}

	first := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)

	return first, first.AddDate(0, 1, 0).Add(-time.Second)
}

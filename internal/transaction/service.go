package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ddanshin/kopilka/internal/category"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, int, error)
	SumByCategory(ctx context.Context, start, end time.Time) (map[category.Category]int64, error)

	BeginBatch(ctx context.Context, minDate, maxDate time.Time) (BatchTx, error)
}

type BatchTx interface {
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Amount       int64
	Type         Type
	Category     category.Category
	Description  string
	Currency     string
	Date         time.Time
	Source       Source
	ImagePath    string
	RawText      string
	AICategory   category.Category
	AIConfidence *float64
}

type ListFilter struct {
	Category  *category.Category
	Type      *Type
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Limit     int
	Offset    int
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	tx := paramsToTransaction(params)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// List returns a page of transactions matching the filter and the total
// number of matches before pagination.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, int, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Update(ctx context.Context, tx *Transaction) error {
	tx.Category = category.Normalize(tx.Category)

	return s.repo.UpdateTransaction(ctx, tx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

// SumByCategory totals expense amounts per category over a date range.
func (s *Service) SumByCategory(ctx context.Context, start, end time.Time) (map[category.Category]int64, error) {
	return s.repo.SumByCategory(ctx, start, end)
}

// CreateBatch persists a batch of transactions atomically. The whole batch
// runs under an advisory lock keyed by its date range so concurrent commits
// of the same chart cannot interleave.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	minDate, maxDate := dateRange(params)

	btx, err := s.repo.BeginBatch(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer btx.Rollback()

	txs := paramsToTransactions(params)
	if err := btx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := btx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	return txs, nil
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func paramsToTransaction(p CreateParams) *Transaction {
	txType := p.Type
	if txType == "" {
		txType = TypeExpense
	}

	source := p.Source
	if source == "" {
		source = SourceManual
	}

	return &Transaction{
		Amount:       p.Amount,
		Type:         txType,
		Category:     category.Normalize(p.Category),
		Description:  p.Description,
		Currency:     p.Currency,
		Date:         p.Date,
		Source:       source,
		ImagePath:    p.ImagePath,
		RawText:      p.RawText,
		AICategory:   p.AICategory,
		AIConfidence: p.AIConfidence,
	}
}

func paramsToTransactions(params []CreateParams) []*Transaction {
	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = paramsToTransaction(p)
	}

	return txs
}

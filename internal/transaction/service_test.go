package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/transaction"
)

func TestService_Create(t *testing.T) {
	type args struct {
		params transaction.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		check     func(t *testing.T, got *transaction.Transaction)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				params: transaction.CreateParams{
					Amount:      1000,
					Type:        transaction.TypeExpense,
					Category:    category.Food,
					Description: "Groceries",
					Currency:    "RUB",
					Date:        time.Date(2025, 10, 27, 0, 0, 0, 0, time.UTC),
				},
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()
						return nil
					})
			},
			check: func(t *testing.T, got *transaction.Transaction) {
				assert.Equal(t, category.Food, got.Category)
				assert.Equal(t, transaction.SourceManual, got.Source)
			},
		},
		{
			name: "UnknownCategoryNormalizedToOther",
			args: args{
				params: transaction.CreateParams{
					Amount:   500,
					Category: category.Category("Snacks"),
					Date:     time.Date(2025, 10, 27, 0, 0, 0, 0, time.UTC),
				},
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						return nil
					})
			},
			check: func(t *testing.T, got *transaction.Transaction) {
				assert.Equal(t, category.Other, got.Category)
				assert.Equal(t, transaction.TypeExpense, got.Type)
			},
		},
		{
			name: "RepoError",
			args: args{
				params: transaction.CreateParams{
					Amount: 500,
				},
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			require.NotNil(t, got)
			assert.NotEmpty(t, got.ID)

			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestService_List(t *testing.T) {
	type args struct {
		filter transaction.ListFilter
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantLen   int
		wantTotal int
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{filter: transaction.ListFilter{Limit: 2}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{Limit: 2}).
					Return([]*transaction.Transaction{
						{ID: uuid.New()},
						{ID: uuid.New()},
					}, 5, nil)
			},
			wantLen:   2,
			wantTotal: 5,
		},
		{
			name: "Error",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{}).
					Return(nil, 0, errors.New("list error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, total, err := svc.List(context.Background(), tt.args.filter)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestService_CreateBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	btx := transaction.NewMockBatchTx(ctrl)
	svc := transaction.NewService(repo)

	early := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	late := time.Date(2025, 12, 15, 12, 0, 0, 0, time.UTC)
	params := []transaction.CreateParams{
		{
			Amount:      83333,
			Category:    category.Food,
			Description: "Продукты (2025-12)",
			Currency:    "RUB",
			Date:        late,
			Source:      transaction.SourceChart,
		},
		{
			Amount:      83337,
			Category:    category.Food,
			Description: "Продукты (2025-01)",
			Currency:    "RUB",
			Date:        early,
			Source:      transaction.SourceChart,
		},
	}

	repo.EXPECT().BeginBatch(gomock.Any(), early, late).Return(btx, nil)
	btx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	btx.EXPECT().Commit().Return(nil)
	btx.EXPECT().Rollback().Return(nil)

	txs, err := svc.CreateBatch(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(83333), txs[0].Amount)
	assert.Equal(t, transaction.SourceChart, txs[0].Source)
	assert.Equal(t, transaction.TypeExpense, txs[0].Type)
}

func TestService_CreateBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	txs, err := svc.CreateBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestService_CreateBatch_CreateError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	btx := transaction.NewMockBatchTx(ctrl)
	svc := transaction.NewService(repo)

	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	params := []transaction.CreateParams{{Amount: 100, Date: date}}

	repo.EXPECT().BeginBatch(gomock.Any(), date, date).Return(btx, nil)
	btx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))
	btx.EXPECT().Rollback().Return(nil)

	_, err := svc.CreateBatch(context.Background(), params)
	assert.Error(t, err)
}

func TestService_SumByCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	repo.EXPECT().
		SumByCategory(gomock.Any(), start, end).
		Return(map[category.Category]int64{category.Food: 123456}, nil)

	sums, err := svc.SumByCategory(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, int64(123456), sums[category.Food])
}

func TestCentsConversion(t *testing.T) {
	d := decimal.RequireFromString("1250.505")
	assert.Equal(t, int64(125051), transaction.CentsFromDecimal(d))

	assert.True(t, transaction.DecimalFromCents(125050).Equal(decimal.RequireFromString("1250.50")))
	assert.Equal(t, "0.01", transaction.DecimalFromCents(1).StringFixed(2))
}

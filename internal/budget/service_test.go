package budget_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ddanshin/kopilka/internal/budget"
	"github.com/ddanshin/kopilka/internal/category"
)

func TestService_Set(t *testing.T) {
	type args struct {
		params budget.SetParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *budget.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				params: budget.SetParams{
					Category:   category.Food,
					LimitCents: 3000000,
					Period:     budget.PeriodMonthly,
				},
			},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().
					SetBudget(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b *budget.Budget) error {
						b.ID = uuid.New()
						b.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "DefaultsToMonthly",
			args: args{
				params: budget.SetParams{
					Category:   category.Transport,
					LimitCents: 100,
				},
			},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().
					SetBudget(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b *budget.Budget) error {
						assert.Equal(t, budget.PeriodMonthly, b.Period)
						b.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name: "ZeroLimit",
			args: args{
				params: budget.SetParams{
					Category: category.Food,
					Period:   budget.PeriodMonthly,
				},
			},
			wantErr: budget.ErrInvalidLimit,
		},
		{
			name: "NegativeLimit",
			args: args{
				params: budget.SetParams{
					Category:   category.Food,
					LimitCents: -1,
					Period:     budget.PeriodWeekly,
				},
			},
			wantErr: budget.ErrInvalidLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := budget.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := budget.NewService(repo, budget.NewMockSpender(ctrl))
			got, err := svc.Set(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			require.NotNil(t, got)
			assert.NotEmpty(t, got.ID)
		})
	}
}

func TestService_Set_UnknownPeriod(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := budget.NewService(budget.NewMockRepository(ctrl), budget.NewMockSpender(ctrl))

	_, err := svc.Set(context.Background(), budget.SetParams{
		Category:   category.Food,
		LimitCents: 100,
		Period:     budget.Period("quarterly"),
	})
	assert.Error(t, err)
}

func TestService_Statuses(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	spender := budget.NewMockSpender(ctrl)
	svc := budget.NewService(repo, spender)

	monthly := &budget.Budget{
		ID:         uuid.New(),
		Category:   category.Food,
		LimitCents: 100000,
		Period:     budget.PeriodMonthly,
	}
	weekly := &budget.Budget{
		ID:         uuid.New(),
		Category:   category.Transport,
		LimitCents: 10000,
		Period:     budget.PeriodWeekly,
	}

	repo.EXPECT().ListBudgets(gomock.Any()).Return([]*budget.Budget{monthly, weekly}, nil)

	// Wednesday June 18 2025: month window June 1-30, week window June 16-22.
	at := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)

	spender.EXPECT().
		SumByCategory(gomock.Any(),
			time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)).
		Return(map[category.Category]int64{category.Food: 125000}, nil)
	spender.EXPECT().
		SumByCategory(gomock.Any(),
			time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 22, 23, 59, 59, 0, time.UTC)).
		Return(map[category.Category]int64{category.Transport: 2500}, nil)

	statuses, err := svc.Statuses(context.Background(), at)
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.Equal(t, int64(125000), statuses[0].SpentCents)
	assert.Equal(t, int64(-25000), statuses[0].RemainingCents)
	assert.InDelta(t, 125.0, statuses[0].Percentage, 0.001)
	assert.True(t, statuses[0].Exceeded)

	assert.Equal(t, int64(2500), statuses[1].SpentCents)
	assert.Equal(t, int64(7500), statuses[1].RemainingCents)
	assert.InDelta(t, 25.0, statuses[1].Percentage, 0.001)
	assert.False(t, statuses[1].Exceeded)
}

func TestService_Statuses_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	svc := budget.NewService(repo, budget.NewMockSpender(ctrl))

	repo.EXPECT().ListBudgets(gomock.Any()).Return(nil, nil)

	statuses, err := svc.Statuses(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestService_Statuses_SpenderError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	spender := budget.NewMockSpender(ctrl)
	svc := budget.NewService(repo, spender)

	repo.EXPECT().ListBudgets(gomock.Any()).Return([]*budget.Budget{
		{ID: uuid.New(), Category: category.Food, LimitCents: 100, Period: budget.PeriodMonthly},
	}, nil)
	spender.EXPECT().
		SumByCategory(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("db down"))

	_, err := svc.Statuses(context.Background(), time.Now())
	assert.Error(t, err)
}

package report_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/report"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_MonthlyReports(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := report.NewMockRepository(ctrl)

	// Nil cache disables caching, so every call hits the repository.
	svc := report.NewService(repo, nil, discardLogger())

	want := []*report.Monthly{
		{
			Year:       2025,
			Month:      11,
			TotalCents: 500000,
			Count:      12,
			ByCategory: map[category.Category]int64{category.Food: 500000},
		},
	}

	repo.EXPECT().MonthlySummaries(gomock.Any(), 2025).Return(want, nil)

	got, err := svc.MonthlyReports(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestService_MonthlyReports_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := report.NewMockRepository(ctrl)
	svc := report.NewService(repo, nil, discardLogger())

	repo.EXPECT().MonthlySummaries(gomock.Any(), 0).Return(nil, errors.New("db down"))

	_, err := svc.MonthlyReports(context.Background(), 0)
	assert.Error(t, err)
}

package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/export"
	"github.com/ddanshin/kopilka/internal/transaction"
)

type fakeLister struct {
	txs    []*transaction.Transaction
	err    error
	filter transaction.ListFilter
}

func (f *fakeLister) List(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, int, error) {
	f.filter = filter

	return f.txs, len(f.txs), f.err
}

func TestService_CSV(t *testing.T) {
	lister := &fakeLister{
		txs: []*transaction.Transaction{
			{
				Amount:      125050,
				Type:        transaction.TypeExpense,
				Category:    category.Food,
				Description: "Продукты (2025-01)",
				Currency:    "RUB",
				Date:        time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
			},
			{
				Amount:      990,
				Type:        transaction.TypeExpense,
				Category:    category.Other,
				Description: "=HYPERLINK(\"http://evil\")",
				Currency:    "RUB",
				Date:        time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	svc := export.NewService(lister)

	out, err := svc.CSV(context.Background(), transaction.ListFilter{Limit: 10, Offset: 20})
	require.NoError(t, err)

	// Pagination must not truncate exports.
	assert.Zero(t, lister.filter.Limit)
	assert.Zero(t, lister.filter.Offset)

	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}), "missing UTF-8 BOM")

	records, err := csv.NewReader(bytes.NewReader(out[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Date", "Type", "Category", "Description", "Amount", "Currency"}, records[0])
	assert.Equal(t, []string{"2025-01-15", "expense", "Food", "Продукты (2025-01)", "1250.50", "RUB"}, records[1])

	// Formula cells are neutralized with a leading apostrophe.
	assert.Equal(t, "'=HYPERLINK(\"http://evil\")", records[2][3])
}

func TestService_CSV_Empty(t *testing.T) {
	svc := export.NewService(&fakeLister{})

	out, err := svc.CSV(context.Background(), transaction.ListFilter{})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestService_CSV_ListError(t *testing.T) {
	svc := export.NewService(&fakeLister{err: errors.New("db down")})

	_, err := svc.CSV(context.Background(), transaction.ListFilter{})
	assert.Error(t, err)
}

package recognizer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/chart"
	"github.com/ddanshin/kopilka/internal/period"
	"github.com/ddanshin/kopilka/internal/recognizer"
)

const sampleResponse = `{
	"transactions": [
		{
			"amount": 349.00,
			"description": "Яндекс.Еда",
			"date": "2026-01-15T14:30:00",
			"category": "Food",
			"confidence": 0.95
		},
		{
			"amount": "120.50",
			"description": "Метро",
			"date": "15.01.2026",
			"category": "Transport",
			"confidence": 0.8
		},
		{
			"description": "no amount, skipped",
			"date": "2026-01-15"
		}
	],
	"total_amount": 469.50,
	"chart": {
		"type": "pie",
		"categories": [
			{"name": "Food", "value": 5000.50, "percentage": 45.5},
			{"name": "Transport", "value": "3000", "percentage": 27.3}
		],
		"total": 11000.50,
		"period": "2026-01",
		"period_type": "month",
		"confidence": 0.9
	}
}`

func TestParseResponse(t *testing.T) {
	result, err := recognizer.ParseResponse(sampleResponse)
	require.NoError(t, err)

	require.Len(t, result.Transactions, 2)

	first := result.Transactions[0]
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("349")), "got %s", first.Amount)
	assert.Equal(t, "Яндекс.Еда", first.Description)
	assert.Equal(t, time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC), first.Date)
	assert.Equal(t, category.Food, first.Category)
	assert.InDelta(t, 0.95, first.Confidence, 0.001)

	second := result.Transactions[1]
	assert.True(t, second.Amount.Equal(decimal.RequireFromString("120.5")))
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), second.Date)

	assert.True(t, result.TotalAmount.Equal(decimal.RequireFromString("469.5")))
	assert.Equal(t, sampleResponse, result.RawText)

	require.NotNil(t, result.Chart)
	assert.Equal(t, chart.TypePie, result.Chart.Type)
	assert.Equal(t, "2026-01", result.Chart.Period)
	assert.Equal(t, period.KindMonth, result.Chart.PeriodType)
	assert.Equal(t, chart.DefaultCurrency, result.Chart.Currency)
	require.Len(t, result.Chart.Categories, 2)
	assert.True(t, result.Chart.Categories[1].Value.Equal(decimal.RequireFromString("3000")))
	require.NotNil(t, result.Chart.Categories[0].Percentage)
	assert.InDelta(t, 45.5, *result.Chart.Categories[0].Percentage, 0.001)
}

func TestParseResponse_MarkdownFences(t *testing.T) {
	wrapped := "```json\n" + `{"transactions": [], "total_amount": 0}` + "\n```"

	result, err := recognizer.ParseResponse(wrapped)
	require.NoError(t, err)
	assert.Empty(t, result.Transactions)
	assert.Nil(t, result.Chart)
}

func TestParseResponse_EmbeddedJSON(t *testing.T) {
	chatty := "Here is the data you asked for:\n" +
		`{"transactions": [{"amount": 10, "description": "x", "date": "2026-02-01", "category": "Bills", "confidence": 1.5}]}` +
		"\nLet me know if you need anything else."

	result, err := recognizer.ParseResponse(chatty)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, category.Bills, result.Transactions[0].Category)

	// Out-of-range confidence clamps to 1.
	assert.InDelta(t, 1.0, result.Transactions[0].Confidence, 0.001)
}

func TestParseResponse_UnknownCategoryAndBadDate(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	restore := recognizer.SetNow(func() time.Time { return frozen })
	defer restore()

	raw := `{"transactions": [{"amount": 5, "description": "", "date": "вчера", "category": "Misc"}]}`

	result, err := recognizer.ParseResponse(raw)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)

	tx := result.Transactions[0]
	assert.Equal(t, category.Other, tx.Category)
	assert.Equal(t, "Unknown", tx.Description)
	assert.Equal(t, frozen, tx.Date)
	assert.InDelta(t, 0.5, tx.Confidence, 0.001)
}

func TestParseResponse_NoJSON(t *testing.T) {
	_, err := recognizer.ParseResponse("I could not read the image, sorry.")
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	got, err := recognizer.ExtractJSON("```\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, got)
}

type fakeVision struct {
	response string
	err      error
	mimeType string
}

func (f *fakeVision) Generate(_ context.Context, mimeType string, _ []byte, _ string) (string, error) {
	f.mimeType = mimeType

	return f.response, f.err
}

func TestService_Recognize(t *testing.T) {
	vision := &fakeVision{response: sampleResponse}
	svc := recognizer.NewService(vision, slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := svc.Recognize(context.Background(), []byte("img"), "screenshot.PNG")
	require.NoError(t, err)
	assert.Len(t, result.Transactions, 2)
	assert.Equal(t, "image/png", vision.mimeType)
}

func TestService_Recognize_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := recognizer.NewService(&fakeVision{err: errors.New("quota")}, logger)
	_, err := svc.Recognize(context.Background(), nil, "a.jpg")
	assert.Error(t, err)

	svc = recognizer.NewService(&fakeVision{response: ""}, logger)
	_, err = svc.Recognize(context.Background(), nil, "a.jpg")
	assert.Error(t, err)
}

package learning_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/learning"
	"github.com/ddanshin/kopilka/internal/transaction"
)

// fakeRepo accumulates corrections in memory like the real store would.
type fakeRepo struct {
	corrections []*learning.Correction
	mappings    map[string]*learning.Mapping
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{mappings: make(map[string]*learning.Mapping)}
}

func (f *fakeRepo) CreateCorrection(_ context.Context, c *learning.Correction) error {
	c.ID = uuid.New()
	f.corrections = append(f.corrections, c)

	return nil
}

func (f *fakeRepo) CountCorrections(_ context.Context, merchant string) (map[category.Category]int, error) {
	counts := make(map[category.Category]int)

	for _, c := range f.corrections {
		if c.Merchant == merchant {
			counts[c.CorrectedCategory]++
		}
	}

	return counts, nil
}

func (f *fakeRepo) UpsertMapping(_ context.Context, m *learning.Mapping) error {
	f.mappings[m.Merchant] = m

	return nil
}

func (f *fakeRepo) FindMapping(_ context.Context, merchant string) (*learning.Mapping, error) {
	return f.mappings[merchant], nil
}

func testService(repo learning.Repository) *learning.Service {
	return learning.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func correctedTx(desc string) *transaction.Transaction {
	return &transaction.Transaction{
		ID:          uuid.New(),
		Description: desc,
		Category:    category.Food,
		AICategory:  category.Other,
	}
}

func TestService_LogCorrection_PromotesAfterThreshold(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(repo)
	ctx := context.Background()

	// Two consistent corrections are not enough.
	require.NoError(t, svc.LogCorrection(ctx, correctedTx("Яндекс.Еда №1")))
	require.NoError(t, svc.LogCorrection(ctx, correctedTx("оплата яндекс.еда")))
	assert.Empty(t, repo.mappings)

	// The third promotes the merchant.
	require.NoError(t, svc.LogCorrection(ctx, correctedTx("ЯНДЕКС ЕДА")))

	m, ok := repo.mappings["яндекс еда"]
	require.True(t, ok, "mapping not created, merchants: %v", repo.mappings)
	assert.Equal(t, category.Food, m.Category)
	assert.Equal(t, 3, m.CorrectionCount)
	assert.InDelta(t, 0.95, m.Confidence, 0.001)
}

func TestService_LogCorrection_RequiresAgreement(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(repo)
	ctx := context.Background()

	// Alternating corrections keep agreement below 70%: after five the
	// split is 3 Food to 2 Bills.
	for i := range 5 {
		tx := correctedTx("Ozon")
		if i%2 == 1 {
			tx.Category = category.Bills
		}

		require.NoError(t, svc.LogCorrection(ctx, tx))
	}

	assert.Empty(t, repo.mappings)

	// Two more Food corrections push agreement to 5/7.
	for range 2 {
		require.NoError(t, svc.LogCorrection(ctx, correctedTx("Ozon")))
	}

	m, ok := repo.mappings["ozon"]
	require.True(t, ok)
	assert.Equal(t, category.Food, m.Category)
	assert.InDelta(t, 5.0/7.0, m.Confidence, 0.001)
}

func TestService_LogCorrection_Skips(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(repo)
	ctx := context.Background()

	// No recognizer suggestion: nothing to learn from.
	tx := correctedTx("Магнит")
	tx.AICategory = ""
	require.NoError(t, svc.LogCorrection(ctx, tx))

	// User kept the suggestion: not a correction.
	tx = correctedTx("Магнит")
	tx.AICategory = category.Food
	require.NoError(t, svc.LogCorrection(ctx, tx))

	// Description normalizes to nothing.
	tx = correctedTx("оплата")
	require.NoError(t, svc.LogCorrection(ctx, tx))

	assert.Empty(t, repo.corrections)
}

func TestService_LearnedCategory(t *testing.T) {
	repo := newFakeRepo()
	repo.mappings["яндекс еда"] = &learning.Mapping{
		Merchant:   "яндекс еда",
		Category:   category.Food,
		Confidence: 0.9,
	}

	svc := testService(repo)

	cat, conf, ok, err := svc.LearnedCategory(context.Background(), "Оплата ЯНДЕКС.ЕДА №5")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, category.Food, cat)
	assert.InDelta(t, 0.9, conf, 0.001)

	_, _, ok, err = svc.LearnedCategory(context.Background(), "неизвестный магазин")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_Classifier(t *testing.T) {
	repo := newFakeRepo()
	repo.mappings["wildberries"] = &learning.Mapping{
		Merchant:   "wildberries",
		Category:   category.Shopping,
		Confidence: 0.9,
	}

	classify := testService(repo).Classifier(context.Background())

	// Learned mapping wins over the keyword classifier.
	assert.Equal(t, category.Shopping, classify("Wildberries"))

	// Unknown merchants fall back to keywords.
	assert.Equal(t, category.Transport, classify("такси"))
	assert.Equal(t, category.Other, classify("载"))
}

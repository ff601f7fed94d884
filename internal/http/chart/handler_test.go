package chart_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/chart"
	httpchart "github.com/ddanshin/kopilka/internal/http/chart"
	"github.com/ddanshin/kopilka/internal/learning"
	"github.com/ddanshin/kopilka/internal/transaction"
)

// stubLearningRepo has no learned mappings, so classification falls back to
// the keyword classifier.
type stubLearningRepo struct{}

func (stubLearningRepo) CreateCorrection(context.Context, *learning.Correction) error { return nil }

func (stubLearningRepo) CountCorrections(context.Context, string) (map[category.Category]int, error) {
	return nil, nil
}

func (stubLearningRepo) UpsertMapping(context.Context, *learning.Mapping) error { return nil }

func (stubLearningRepo) FindMapping(context.Context, string) (*learning.Mapping, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	learner := learning.NewService(stubLearningRepo{}, logger)
	h := httpchart.NewHandler(transaction.NewService(nil), learner, nil, logger)

	router := chi.NewRouter()
	router.Route("/charts", h.Routes)

	return router
}

func TestHandler_SynthesizeColorStableForUnmappedLabel(t *testing.T) {
	router := newTestRouter(t)

	body := `{
		"chart": {
			"type": "pie",
			"categories": [{"name": "Misc stuff", "value": "1200"}],
			"total": "1200",
			"period": "2025",
			"period_type": "year",
			"confidence": 0.9
		},
		"selected": [0]
	}`

	req := httptest.NewRequest(http.MethodPost, "/charts/synthesize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Drafts []struct {
			Category    string `json:"category"`
			Color       string `json:"color"`
			Description string `json:"description"`
		} `json:"drafts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Drafts, 12)

	// Every installment of an unmapped slice renders with the same color,
	// and it is the color the chart response assigned the slice itself.
	want := category.Color("Misc stuff")

	dto := httpchart.ToDTO(&chart.RecognizedChart{
		Categories: []chart.ChartCategory{{Name: "Misc stuff"}},
	}, nil)
	require.Equal(t, want, dto.Categories[0].Color)

	for i, d := range resp.Drafts {
		assert.Equal(t, string(category.Other), d.Category)
		assert.Equal(t, want, d.Color, "draft %d (%s)", i, d.Description)
	}
}

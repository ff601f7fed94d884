package recognizer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/chart"
	"github.com/ddanshin/kopilka/internal/period"
)

// payload mirrors the JSON shape the prompt asks for. Numeric fields are
// decoded loosely because models occasionally emit them as strings.
type payload struct {
	Transactions []struct {
		Amount      any    `json:"amount"`
		Description string `json:"description"`
		Date        string `json:"date"`
		Category    string `json:"category"`
		Confidence  any    `json:"confidence"`
	} `json:"transactions"`
	TotalAmount any `json:"total_amount"`
	Chart       *struct {
		Type       string `json:"type"`
		Categories []struct {
			Name       string   `json:"name"`
			Value      any      `json:"value"`
			Percentage *float64 `json:"percentage"`
		} `json:"categories"`
		Total      any    `json:"total"`
		Period     string `json:"period"`
		PeriodType string `json:"period_type"`
		Confidence any    `json:"confidence"`
	} `json:"chart"`
}

func parseResponse(raw string) (*Result, error) {
	clean, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var p payload

	dec := json.NewDecoder(strings.NewReader(clean))
	dec.UseNumber()

	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	result := &Result{
		TotalAmount: chart.ParseAmount(p.TotalAmount),
		RawText:     raw,
	}

	for _, tx := range p.Transactions {
		if tx.Amount == nil {
			continue
		}

		result.Transactions = append(result.Transactions, ParsedTransaction{
			Amount:      chart.ParseAmount(tx.Amount),
			Description: orUnknown(tx.Description),
			Date:        parseDate(tx.Date),
			Category:    category.Normalize(category.Category(tx.Category)),
			Confidence:  chart.ClampConfidence(tx.Confidence, 0.5),
		})
	}

	if p.Chart != nil {
		c := &chart.RecognizedChart{
			Type:       chart.ParseType(p.Chart.Type),
			Total:      chart.ParseAmount(p.Chart.Total),
			Period:     strings.TrimSpace(p.Chart.Period),
			PeriodType: period.ParseKind(p.Chart.PeriodType),
			Confidence: chart.ClampConfidence(p.Chart.Confidence, 0.5),
			Currency:   chart.DefaultCurrency,
		}

		for _, cc := range p.Chart.Categories {
			c.Categories = append(c.Categories, chart.ChartCategory{
				Name:       orUnknown(cc.Name),
				Value:      chart.ParseAmount(cc.Value),
				Percentage: cc.Percentage,
			})
		}

		result.Chart = c
	}

	return result, nil
}

// extractJSON pulls the JSON object out of a model response, tolerating
// Markdown code fences and surrounding prose.
func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}

		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}

		s = strings.TrimSpace(s)
	}

	if json.Valid([]byte(s)) {
		return s, nil
	}

	// Fall back to the outermost object in the text.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			if candidate := s[start : end+1]; json.Valid([]byte(candidate)) {
				return candidate, nil
			}
		}
	}

	snippet := raw
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}

	return "", fmt.Errorf("no valid JSON in response: %s", snippet)
}

// now is swapped out in tests.
var now = time.Now

// dateLayouts are the formats the model is known to emit.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
}

// parseDate tries the known layouts and falls back to the current time.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}

	return now().UTC()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}

	return s
}

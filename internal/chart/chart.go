// Package chart models a chart recognized in an uploaded image and turns it
// into concrete transaction drafts for the user to review.
package chart

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ddanshin/kopilka/internal/period"
)

// Type is the shape of the recognized chart.
type Type string

const (
	TypePie   Type = "pie"
	TypeBar   Type = "bar"
	TypeLine  Type = "line"
	TypeOther Type = "other"
)

// ParseType normalizes the recognizer's chart type, defaulting to other.
func ParseType(s string) Type {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypePie:
		return TypePie
	case TypeBar:
		return TypeBar
	case TypeLine:
		return TypeLine
	}

	return TypeOther
}

// DefaultCurrency is the chart's implied currency when the recognizer gives
// no better signal.
const DefaultCurrency = "RUB"

// ChartCategory is one slice of a recognized chart. Immutable once received.
type ChartCategory struct {
	Name       string
	Value      decimal.Decimal
	Percentage *float64
}

// RecognizedChart is the structured output of the external image
// recognizer. Total is trusted as given and never re-derived from the
// category values.
type RecognizedChart struct {
	Type       Type
	Categories []ChartCategory
	Total      decimal.Decimal
	Period     string
	PeriodType period.Kind
	Confidence float64
	Currency   string
}

// ResolvePeriod resolves the chart's free-text period label with its
// structural hint.
func (c RecognizedChart) ResolvePeriod() period.Resolved {
	return period.Resolve(c.Period, c.PeriodType)
}

// ParseAmount converts a loosely-typed numeric value from the recognizer
// boundary into a decimal. Non-numeric and non-finite input normalizes to
// zero rather than propagating an error.
func ParseAmount(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}

		return decimal.NewFromFloat(n)
	case int64:
		return decimal.NewFromInt(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(n)); err == nil {
			return d
		}
	case decimal.Decimal:
		return n
	}

	return decimal.Zero
}

// ClampConfidence clips a confidence score to [0, 1], mapping junk to the
// given default.
func ClampConfidence(v any, def float64) float64 {
	f, ok := v.(float64)
	if !ok {
		if n, isNum := v.(json.Number); isNum {
			parsed, err := n.Float64()
			if err != nil {
				return def
			}

			f = parsed
		} else {
			return def
		}
	}

	if math.IsNaN(f) {
		return def
	}

	return math.Max(0, math.Min(1, f))
}

package chart

import (
	"github.com/shopspring/decimal"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/chart"
	"github.com/ddanshin/kopilka/internal/period"
)

// CategoryDTO is one chart slice as exposed over the API, annotated with its
// classification and display color.
type CategoryDTO struct {
	Name       string            `json:"name"`
	Value      decimal.Decimal   `json:"value"`
	Percentage *float64          `json:"percentage,omitempty"`
	Category   category.Category `json:"category"`
	Color      string            `json:"color,omitempty"`
}

// ChartDTO is the wire form of a recognized chart.
type ChartDTO struct {
	Type       string          `json:"type"`
	Categories []CategoryDTO   `json:"categories"`
	Total      decimal.Decimal `json:"total"`
	Period     string          `json:"period"`
	PeriodType string          `json:"period_type"`
	Confidence float64         `json:"confidence"`
	Currency   string          `json:"currency,omitempty"`
}

// ToDTO annotates a recognized chart for API responses. Slices that classify
// as Other carry a stable display color derived from their label.
func ToDTO(c *chart.RecognizedChart, classify func(string) category.Category) ChartDTO {
	if classify == nil {
		classify = category.Classify
	}

	dto := ChartDTO{
		Type:       string(c.Type),
		Total:      c.Total,
		Period:     c.Period,
		PeriodType: string(c.PeriodType),
		Confidence: c.Confidence,
		Currency:   c.Currency,
	}

	for _, cc := range c.Categories {
		cat := classify(cc.Name)

		dc := CategoryDTO{
			Name:       cc.Name,
			Value:      cc.Value,
			Percentage: cc.Percentage,
			Category:   cat,
		}
		if cat == category.Other {
			dc.Color = category.Color(cc.Name)
		}

		dto.Categories = append(dto.Categories, dc)
	}

	return dto
}

// FromDTO converts the wire form back into the domain chart.
func FromDTO(dto ChartDTO) chart.RecognizedChart {
	c := chart.RecognizedChart{
		Type:       chart.ParseType(dto.Type),
		Total:      dto.Total,
		Period:     dto.Period,
		PeriodType: period.ParseKind(dto.PeriodType),
		Confidence: dto.Confidence,
		Currency:   dto.Currency,
	}

	for _, dc := range dto.Categories {
		c.Categories = append(c.Categories, chart.ChartCategory{
			Name:       dc.Name,
			Value:      dc.Value,
			Percentage: dc.Percentage,
		})
	}

	return c
}

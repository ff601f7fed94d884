package chart

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/period"
)

// Draft is a not-yet-persisted transaction synthesized from a recognized
// chart. Drafts are immutable values; identity is the index in the slice
// returned by Synthesize.
type Draft struct {
	Amount      decimal.Decimal
	Description string
	// Label is the chart slice name the draft was derived from, without
	// the period suffix the description carries. Display concerns keyed
	// by the source label (stable colors) must use it, not Description.
	Label    string
	Category category.Category
	Date     time.Time
	Currency string
	RawText  string
}

// ClassifyFunc maps a chart category label to a canonical category. It lets
// callers layer learned overrides on top of the keyword classifier.
type ClassifyFunc func(label string) category.Category

var twelve = decimal.NewFromInt(12)

// Synthesize expands the selected categories of a recognized chart into
// dated transaction drafts.
//
// For a year-granular period each category's value is split into 12 monthly
// installments dated the 15th of each month; rounding residue is folded into
// the last installment so the installments sum back to the original value
// exactly. For any other granularity each category yields a single draft
// dated at the midpoint of the period.
//
// Degenerate input (empty chart, empty or out-of-range selection) yields an
// empty result, never an error. Zero and negative values pass through
// unchanged; rejecting them is the caller's concern.
func Synthesize(c RecognizedChart, selected []int, p period.Resolved, classify ClassifyFunc) []Draft {
	if classify == nil {
		classify = category.Classify
	}

	currency := c.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	var drafts []Draft

	seen := make(map[int]struct{}, len(selected))

	for _, idx := range selected {
		if idx < 0 || idx >= len(c.Categories) {
			continue
		}

		if _, dup := seen[idx]; dup {
			continue
		}

		seen[idx] = struct{}{}

		cc := c.Categories[idx]

		if p.Kind == period.KindYear {
			drafts = append(drafts, monthlyInstallments(c, cc, p, currency, classify)...)
		} else {
			drafts = append(drafts, singleDraft(c, cc, p, currency, classify))
		}
	}

	return drafts
}

// monthlyInstallments splits a category's value over the 12 months of the
// period's year. A user-narrowed window keeps all 12 installments; months
// outside the window have their dates clamped to its edges so every draft
// stays inside [Start, End].
func monthlyInstallments(c RecognizedChart, cc ChartCategory, p period.Resolved, currency string, classify ClassifyFunc) []Draft {
	value := cc.Value.Round(2)
	installment := value.DivRound(twelve, 2)
	// The last installment absorbs the rounding residue so the twelve
	// amounts reconcile to the original value to the cent.
	last := value.Sub(installment.Mul(decimal.NewFromInt(11)))

	cat := classify(cc.Name)
	raw := provenance(c)

	drafts := make([]Draft, 0, 12)
	first := time.Date(p.Start.Year(), time.January, 15, 12, 0, 0, 0, time.UTC)
	lo := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 0, 0, 0, 0, time.UTC)
	hi := time.Date(p.End.Year(), p.End.Month(), p.End.Day(), 23, 59, 59, 0, time.UTC)

	for i := range 12 {
		amount := installment
		if i == 11 {
			amount = last
		}

		anchor := first.AddDate(0, i, 0)

		date := anchor
		if date.Before(lo) {
			date = lo
		}
		if date.After(hi) {
			date = hi
		}

		drafts = append(drafts, Draft{
			Amount:      amount,
			Description: fmt.Sprintf("%s (%04d-%02d)", cc.Name, anchor.Year(), int(anchor.Month())),
			Label:       cc.Name,
			Category:    cat,
			Date:        date,
			Currency:    currency,
			RawText:     raw,
		})
	}

	return drafts
}

func singleDraft(c RecognizedChart, cc ChartCategory, p period.Resolved, currency string, classify ClassifyFunc) Draft {
	desc := cc.Name
	if c.Period != "" {
		desc = fmt.Sprintf("%s (%s)", cc.Name, c.Period)
	}

	return Draft{
		Amount:      cc.Value.Round(2),
		Description: desc,
		Label:       cc.Name,
		Category:    classify(cc.Name),
		Date:        midpoint(p),
		Currency:    currency,
		RawText:     provenance(c),
	}
}

// midpoint returns the instant halfway between the period's first and last
// moments, taking Start at 00:00 and End at 23:59:59.
func midpoint(p period.Resolved) time.Time {
	start := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(p.End.Year(), p.End.Month(), p.End.Day(), 23, 59, 59, 0, time.UTC)

	return start.Add(end.Sub(start) / 2).Truncate(time.Second)
}

func provenance(c RecognizedChart) string {
	s := fmt.Sprintf("Derived from recognized %s chart", ParseType(string(c.Type)))
	if c.Period != "" {
		s += " (" + c.Period + ")"
	}

	return s
}

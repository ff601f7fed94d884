// Package budget tracks per-category spending limits and their usage.
package budget

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ddanshin/kopilka/internal/category"
)

var (
	// ErrNotFound is returned when a budget does not exist.
	ErrNotFound = errors.New("budget not found")
	// ErrInvalidLimit is returned for non-positive limits.
	ErrInvalidLimit = errors.New("budget limit must be positive")
)

// Period is the recurrence window of a budget.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodWeekly  Period = "weekly"
)

// ValidPeriod reports whether p is a known recurrence window.
func ValidPeriod(p Period) bool {
	return p == PeriodMonthly || p == PeriodWeekly
}

// Budget is a spending limit for one category over a recurring window.
// At most one budget exists per category and period.
type Budget struct {
	ID         uuid.UUID
	Category   category.Category
	LimitCents int64
	Period     Period
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Status is a budget annotated with its spending in the current window.
type Status struct {
	Budget         *Budget
	SpentCents     int64
	RemainingCents int64
	Percentage     float64
	Exceeded       bool
}

package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ddanshin/kopilka/internal/category"
)

// ErrNotFound is returned when a transaction does not exist or was deleted.
var ErrNotFound = errors.New("transaction not found")

// Type represents the direction of a transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Source records how a transaction entered the system.
type Source string

const (
	SourceManual     Source = "manual"
	SourceRecognized Source = "recognized"
	SourceChart      Source = "chart"
)

// Transaction represents a financial transaction.
type Transaction struct {
	ID           uuid.UUID
	Amount       int64 // Amount in cents
	Type         Type
	Category     category.Category
	Description  string
	Currency     string
	Date         time.Time
	Source       Source
	ImagePath    string
	RawText      string
	AICategory   category.Category // Category originally suggested by the recognizer
	AIConfidence *float64
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
}

// CentsFromDecimal converts a decimal amount to cents, rounding half up.
func CentsFromDecimal(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// DecimalFromCents converts a cent amount back to its decimal representation.
func DecimalFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

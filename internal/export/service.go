// Package export renders transactions as CSV for use in spreadsheet tools.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/ddanshin/kopilka/internal/transaction"
)

// Lister is the slice of the transaction service the exporter needs.
type Lister interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, int, error)
}

// Service renders transaction exports.
type Service struct {
	transactions Lister
}

func NewService(transactions Lister) *Service {
	return &Service{transactions: transactions}
}

var csvHeader = []string{"Date", "Type", "Category", "Description", "Amount", "Currency"}

// CSV exports all transactions matching the filter as a CSV document. The
// output starts with a UTF-8 BOM so Excel detects the encoding of Cyrillic
// text, and cell values are sanitized against spreadsheet formula injection.
func (s *Service) CSV(ctx context.Context, filter transaction.ListFilter) ([]byte, error) {
	// Export is unpaginated regardless of what the caller set.
	filter.Limit = 0
	filter.Offset = 0

	txs, _, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	var buf bytes.Buffer

	// UTF-8 BOM.
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.Date.Format("2006-01-02"),
			string(tx.Type),
			sanitizeCell(string(tx.Category)),
			sanitizeCell(tx.Description),
			transaction.DecimalFromCents(tx.Amount).StringFixed(2),
			tx.Currency,
		}

		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing record: %w", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return buf.Bytes(), nil
}

// sanitizeCell neutralizes values a spreadsheet would evaluate as a formula.
func sanitizeCell(v string) string {
	if v == "" {
		return v
	}

	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}

	// A leading quote would otherwise hide a formula after stripping.
	if strings.HasPrefix(v, "\"=") {
		return "'" + v
	}

	return v
}

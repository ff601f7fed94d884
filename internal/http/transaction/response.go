package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/transaction"
)

type transactionResponse struct {
	ID           uuid.UUID          `json:"id"`
	Amount       int64              `json:"amount"`
	Type         transaction.Type   `json:"type"`
	Category     category.Category  `json:"category"`
	Description  string             `json:"description"`
	Currency     string             `json:"currency"`
	Date         time.Time          `json:"date"`
	Source       transaction.Source `json:"source"`
	AICategory   category.Category  `json:"ai_category,omitempty"`
	AIConfidence *float64           `json:"ai_confidence,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    *time.Time         `json:"updated_at,omitempty"`
}

type listResponse struct {
	Items []transactionResponse `json:"items"`
	Total int                   `json:"total"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:           tx.ID,
		Amount:       tx.Amount,
		Type:         tx.Type,
		Category:     tx.Category,
		Description:  tx.Description,
		Currency:     tx.Currency,
		Date:         tx.Date,
		Source:       tx.Source,
		AICategory:   tx.AICategory,
		AIConfidence: tx.AIConfidence,
		CreatedAt:    tx.CreatedAt,
		UpdatedAt:    tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

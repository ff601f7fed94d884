package learning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/transaction"
)

// Thresholds a merchant must cross before its learned category is trusted.
const (
	minCorrections = 3
	minAgreement   = 0.7
	maxConfidence  = 0.95
)

// Correction records one user override of a recognized category.
type Correction struct {
	ID                uuid.UUID
	TransactionID     uuid.UUID
	OriginalCategory  category.Category
	CorrectedCategory category.Category
	Confidence        float64
	Merchant          string
	CreatedAt         time.Time
}

// Mapping is a learned merchant-to-category association.
type Mapping struct {
	Merchant        string
	Category        category.Category
	CorrectionCount int
	Confidence      float64
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

type Repository interface {
	CreateCorrection(ctx context.Context, c *Correction) error
	// CountCorrections returns the number of corrections per corrected
	// category for one merchant.
	CountCorrections(ctx context.Context, merchant string) (map[category.Category]int, error)
	UpsertMapping(ctx context.Context, m *Mapping) error
	// FindMapping returns nil when no mapping exists for the merchant.
	FindMapping(ctx context.Context, merchant string) (*Mapping, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// LogCorrection records that the user changed a transaction's category away
// from what the recognizer suggested, and promotes the merchant to a learned
// mapping once enough consistent corrections accumulate.
func (s *Service) LogCorrection(ctx context.Context, tx *transaction.Transaction) error {
	if tx.AICategory == "" || tx.AICategory == tx.Category {
		return nil
	}

	merchant := Normalize(tx.Description)
	if merchant == "" {
		return nil
	}

	confidence := 0.5
	if tx.AIConfidence != nil {
		confidence = *tx.AIConfidence
	}

	correction := &Correction{
		TransactionID:     tx.ID,
		OriginalCategory:  tx.AICategory,
		CorrectedCategory: tx.Category,
		Confidence:        confidence,
		Merchant:          merchant,
	}
	if err := s.repo.CreateCorrection(ctx, correction); err != nil {
		return fmt.Errorf("recording correction: %w", err)
	}

	if err := s.promote(ctx, merchant, tx.Category); err != nil {
		return fmt.Errorf("promoting merchant %q: %w", merchant, err)
	}

	return nil
}

// promote upserts the learned mapping when the merchant has at least
// minCorrections toward the category and minAgreement of all its
// corrections agree.
func (s *Service) promote(ctx context.Context, merchant string, cat category.Category) error {
	counts, err := s.repo.CountCorrections(ctx, merchant)
	if err != nil {
		return fmt.Errorf("counting corrections: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	agreed := counts[cat]
	if total == 0 || agreed < minCorrections {
		return nil
	}

	ratio := float64(agreed) / float64(total)
	if ratio < minAgreement {
		return nil
	}

	confidence := ratio
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	mapping := &Mapping{
		Merchant:        merchant,
		Category:        cat,
		CorrectionCount: agreed,
		Confidence:      confidence,
	}
	if err := s.repo.UpsertMapping(ctx, mapping); err != nil {
		return err
	}

	s.logger.Info("learned merchant category",
		"merchant", merchant, "category", cat, "confidence", confidence)

	return nil
}

// LearnedCategory returns the learned category for a description, if the
// merchant has one.
func (s *Service) LearnedCategory(ctx context.Context, description string) (category.Category, float64, bool, error) {
	merchant := Normalize(description)
	if merchant == "" {
		return "", 0, false, nil
	}

	mapping, err := s.repo.FindMapping(ctx, merchant)
	if err != nil {
		return "", 0, false, fmt.Errorf("finding mapping: %w", err)
	}

	if mapping == nil {
		return "", 0, false, nil
	}

	return mapping.Category, mapping.Confidence, true, nil
}

// Classifier returns a label classifier that prefers learned merchant
// mappings and falls back to the keyword classifier. Lookup errors only
// degrade to the fallback.
func (s *Service) Classifier(ctx context.Context) func(label string) category.Category {
	return func(label string) category.Category {
		learned, _, ok, err := s.LearnedCategory(ctx, label)
		if err != nil {
			s.logger.Warn("learned category lookup failed", "label", label, "error", err)
		} else if ok {
			return learned
		}

		return category.Classify(label)
	}
}

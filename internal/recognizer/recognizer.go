// Package recognizer extracts transactions and charts from bank app
// screenshots using a vision model.
package recognizer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/chart"
)

// ParsedTransaction is one transaction the model extracted from an image.
type ParsedTransaction struct {
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	Category    category.Category
	Confidence  float64
}

// Result is everything recognized in a single image.
type Result struct {
	Transactions []ParsedTransaction
	TotalAmount  decimal.Decimal
	Chart        *chart.RecognizedChart
	RawText      string
}

// Vision generates a text response for an image plus prompt. The production
// implementation wraps the Gemini API.
type Vision interface {
	Generate(ctx context.Context, mimeType string, image []byte, prompt string) (string, error)
}

type Service struct {
	vision Vision
	logger *slog.Logger
}

func NewService(vision Vision, logger *slog.Logger) *Service {
	return &Service{vision: vision, logger: logger}
}

// mediaTypes maps file extensions to MIME types the model accepts.
var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

func mediaType(filename string) string {
	if mt, ok := mediaTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mt
	}

	return "image/jpeg"
}

// Recognize sends the image to the vision model and decodes its response.
func (s *Service) Recognize(ctx context.Context, image []byte, filename string) (*Result, error) {
	raw, err := s.vision.Generate(ctx, mediaType(filename), image, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("calling vision model: %w", err)
	}

	if raw == "" {
		return nil, fmt.Errorf("vision model returned empty response")
	}

	s.logger.Debug("vision model responded", "file", filename, "length", len(raw))

	result, err := parseResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing vision response: %w", err)
	}

	return result, nil
}

// GeminiVision is the production Vision backed by the Gemini API.
type GeminiVision struct {
	client *genai.Client
	model  string
}

func NewGeminiVision(ctx context.Context, model string) (*GeminiVision, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GeminiVision{client: client, model: model}, nil
}

func (g *GeminiVision) Generate(ctx context.Context, mimeType string, image []byte, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return resp.Text(), nil
}

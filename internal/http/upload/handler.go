// Package upload accepts bank screenshots and runs them through the
// recognizer.
package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ddanshin/kopilka/internal/category"
	httpchart "github.com/ddanshin/kopilka/internal/http/chart"
	"github.com/ddanshin/kopilka/internal/learning"
	"github.com/ddanshin/kopilka/internal/recognizer"
	"github.com/ddanshin/kopilka/internal/transaction"
)

// imageSignature pairs magic bytes with the image type they identify.
type imageSignature struct {
	prefix []byte
	kind   string
}

var imageSignatures = []imageSignature{
	{[]byte{0xFF, 0xD8, 0xFF}, "jpeg"},
	{[]byte("\x89PNG\r\n\x1a\n"), "png"},
	{[]byte("GIF87a"), "gif"},
	{[]byte("GIF89a"), "gif"},
	{[]byte("RIFF"), "webp"},
}

var allowedExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
}

// detectImageType identifies the image format from its magic bytes, or
// returns empty for anything that is not a supported image.
func detectImageType(data []byte) string {
	for _, sig := range imageSignatures {
		if !bytes.HasPrefix(data, sig.prefix) {
			continue
		}

		// RIFF containers are only images when the form type is WEBP.
		if sig.kind == "webp" {
			if len(data) >= 12 && bytes.Equal(data[8:12], []byte("WEBP")) {
				return "webp"
			}

			continue
		}

		return sig.kind
	}

	return ""
}

type Config struct {
	Dir          string
	MaxSizeBytes int64
	MaxBatch     int
}

type Handler struct {
	recognizer *recognizer.Service
	learner    *learning.Service
	cfg        Config
	logger     *slog.Logger
}

func NewHandler(rec *recognizer.Service, learner *learning.Service, cfg Config, logger *slog.Logger) *Handler {
	return &Handler{recognizer: rec, learner: learner, cfg: cfg, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.upload)
	r.Post("/batch", h.uploadBatch)
}

type parsedTransactionResponse struct {
	AmountCents int64             `json:"amount_cents"`
	Description string            `json:"description"`
	Date        time.Time         `json:"date"`
	Category    category.Category `json:"category"`
	Confidence  float64           `json:"confidence"`
}

type uploadResponse struct {
	Transactions []parsedTransactionResponse `json:"transactions"`
	TotalCents   int64                       `json:"total_cents"`
	Chart        *httpchart.ChartDTO         `json:"chart,omitempty"`
	ImagePath    string                      `json:"image_path"`
}

type batchItemResponse struct {
	Filename string          `json:"filename"`
	Error    string          `json:"error,omitempty"`
	Result   *uploadResponse `json:"result,omitempty"`
}

type batchResponse struct {
	Items []batchItemResponse `json:"items"`
}

// upload parses a single screenshot and returns the recognized data for
// review. The image is kept on disk so committed transactions can reference
// their source.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	resp, err := h.processOne(r, file, header.Filename)
	if err != nil {
		h.logger.Warn("upload rejected", "file", header.Filename, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// uploadBatch parses up to MaxBatch screenshots in one request. Per-file
// failures are reported inline instead of failing the whole batch.
func (h *Handler) uploadBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.MaxSizeBytes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "no files provided", http.StatusBadRequest)
		return
	}

	if len(files) > h.cfg.MaxBatch {
		http.Error(w, fmt.Sprintf("too many files, maximum is %d", h.cfg.MaxBatch), http.StatusBadRequest)
		return
	}

	resp := batchResponse{Items: make([]batchItemResponse, 0, len(files))}

	for _, header := range files {
		item := batchItemResponse{Filename: header.Filename}

		file, err := header.Open()
		if err != nil {
			item.Error = err.Error()
			resp.Items = append(resp.Items, item)

			continue
		}

		result, err := h.processOne(r, file, header.Filename)
		file.Close()

		if err != nil {
			item.Error = err.Error()
		} else {
			item.Result = result
		}

		resp.Items = append(resp.Items, item)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) processOne(r *http.Request, file io.Reader, filename string) (*uploadResponse, error) {
	content, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	if int64(len(content)) > h.cfg.MaxSizeBytes {
		return nil, fmt.Errorf("file too large, maximum size is %dMB", h.cfg.MaxSizeBytes/1024/1024)
	}

	if detectImageType(content) == "" {
		return nil, fmt.Errorf("file content is not a valid image")
	}

	imagePath, err := h.saveFile(content, filename)
	if err != nil {
		return nil, err
	}

	result, err := h.recognizer.Recognize(r.Context(), content, filename)
	if err != nil {
		// Keep the disk clean when nothing useful was extracted.
		if rmErr := os.Remove(imagePath); rmErr != nil {
			h.logger.Warn("failed to remove rejected upload", "path", imagePath, "error", rmErr)
		}

		return nil, fmt.Errorf("recognizing image: %w", err)
	}

	resp := &uploadResponse{
		Transactions: make([]parsedTransactionResponse, 0, len(result.Transactions)),
		TotalCents:   transaction.CentsFromDecimal(result.TotalAmount),
		ImagePath:    imagePath,
	}

	for _, tx := range result.Transactions {
		resp.Transactions = append(resp.Transactions, parsedTransactionResponse{
			AmountCents: transaction.CentsFromDecimal(tx.Amount),
			Description: tx.Description,
			Date:        tx.Date,
			Category:    tx.Category,
			Confidence:  tx.Confidence,
		})
	}

	if result.Chart != nil {
		dto := httpchart.ToDTO(result.Chart, h.learner.Classifier(r.Context()))
		resp.Chart = &dto
	}

	return resp, nil
}

func (h *Handler) saveFile(content []byte, filename string) (string, error) {
	if err := os.MkdirAll(h.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		ext = ".jpg"
	}

	path := filepath.Join(h.cfg.Dir, uuid.New().String()+ext)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("saving upload: %w", err)
	}

	return path, nil
}

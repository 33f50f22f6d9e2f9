// Package ocr obtains raw text from cédula scans through external vision
// services. It is the I/O boundary in front of the pure extraction pipeline
// in internal/cedula: callers run OCR here first, then hand the text over.
//
// Two providers are available: Google Cloud Vision (default) and a Google
// Document AI OCR processor. Both read credentials from the environment:
//   - GOOGLE_APPLICATION_CREDENTIALS: path to a service account JSON file, OR
//   - GOOGLE_CREDENTIALS: inline JSON credentials string
//
// Synchronous processing limits (both providers): 20MB per file, 5 pages
// per PDF. Cédula scans are one or two small images, so the limits only
// matter for malformed input.
package ocr

import (
	"context"
	"io"
	"time"
)

// Service extracts raw text from scanned documents.
type Service interface {
	// ExtractImage runs text detection on a single image (JPEG or PNG).
	ExtractImage(ctx context.Context, image io.Reader) (*TextResult, error)

	// ExtractPDF runs text detection on a PDF, concatenating all pages in
	// reading order.
	ExtractPDF(ctx context.Context, pdf io.Reader) (*TextResult, error)
}

// TextResult is the raw text plus detection metadata for one source file.
type TextResult struct {
	// Text is the detected text, pages concatenated in reading order.
	Text string `json:"text"`

	// PageCount is the number of pages processed (1 for images).
	PageCount int `json:"page_count"`

	// Confidence is the average detection confidence (0.0 to 1.0).
	Confidence float32 `json:"confidence"`

	// LanguageCodes contains the languages detected in the document.
	LanguageCodes []string `json:"language_codes,omitempty"`

	// ProcessedAt is when detection completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long the provider call took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// Score returns the confidence scaled to the 0-100 range the merge
// tie-break expects.
func (r *TextResult) Score() float32 {
	return r.Confidence * 100
}

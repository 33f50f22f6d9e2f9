package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"idtools/internal/logger"
)

// DocumentAIService implements Service using a Document AI OCR processor.
// It is the alternative provider for deployments that already run Document
// AI and want a single quota surface; results are interchangeable with the
// Vision provider.
//
// Requires: GOOGLE_PROJECT_ID (or GOOGLE_CLOUD_PROJECT), GOOGLE_PROCESSOR_ID
// (or DOCUMENT_AI_PROCESSOR_ID). Location defaults to "us".
type DocumentAIService struct {
	client      *documentai.DocumentProcessorClient
	projectID   string
	location    string
	processorID string
	log         zerolog.Logger
}

// NewDocumentAIService creates the service with configuration from the
// environment.
func NewDocumentAIService(ctx context.Context) (Service, error) {
	const op = "NewDocumentAIService"

	projectID := firstEnv("GOOGLE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT")
	processorID := firstEnv("GOOGLE_PROCESSOR_ID", "DOCUMENT_AI_PROCESSOR_ID")
	location := firstEnv("GOOGLE_LOCATION", "GOOGLE_CLOUD_LOCATION")
	if location == "" {
		location = "us"
	}

	if projectID == "" {
		return nil, WrapOCRError(op, ErrMissingCredentials, "GOOGLE_PROJECT_ID or GOOGLE_CLOUD_PROJECT is required")
	}
	if processorID == "" {
		return nil, WrapOCRError(op, ErrMissingCredentials, "GOOGLE_PROCESSOR_ID or DOCUMENT_AI_PROCESSOR_ID is required")
	}

	var clientOptions []option.ClientOption
	if location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to create Document AI client for location %s", location))
	}

	return &DocumentAIService{
		client:      client,
		projectID:   projectID,
		location:    location,
		processorID: processorID,
		log:         logger.WithComponent("document-ai"),
	}, nil
}

// ExtractImage runs the OCR processor on a single image.
func (s *DocumentAIService) ExtractImage(ctx context.Context, image io.Reader) (*TextResult, error) {
	const op = "ExtractImage"

	data, err := readBounded(image)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read image data")
	}

	var mimeType string
	switch {
	case isJPEG(data):
		mimeType = "image/jpeg"
	case isPNG(data):
		mimeType = "image/png"
	default:
		return nil, WrapOCRError(op, ErrUnsupportedFormat, "unrecognized image header")
	}

	return s.process(ctx, op, data, mimeType)
}

// ExtractPDF runs the OCR processor on a PDF.
func (s *DocumentAIService) ExtractPDF(ctx context.Context, pdf io.Reader) (*TextResult, error) {
	const op = "ExtractPDF"

	data, err := readBounded(pdf)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read PDF data")
	}
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		return nil, WrapOCRError(op, ErrInvalidPDF, "missing PDF header")
	}

	return s.process(ctx, op, data, "application/pdf")
}

func (s *DocumentAIService) process(ctx context.Context, op string, data []byte, mimeType string) (*TextResult, error) {
	start := time.Now()

	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		s.projectID, s.location, s.processorID)

	resp, err := s.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	})
	if err != nil {
		return nil, WrapOCRError(op, ErrDetectionFailed, fmt.Sprintf("Document AI call failed: %v", err))
	}
	if resp.Document == nil || resp.Document.Text == "" {
		return nil, WrapOCRError(op, ErrEmptyDocument, "")
	}

	doc := resp.Document
	result := &TextResult{
		Text:      doc.Text,
		PageCount: len(doc.Pages),
	}
	if result.PageCount == 0 {
		result.PageCount = 1
	}
	if result.PageCount > MaxPagesSync {
		return nil, WrapOCRError(op, ErrTooManyPages, fmt.Sprintf("document has %d pages", result.PageCount))
	}

	var sum float32
	var count int
	for _, page := range doc.Pages {
		if page.Layout != nil && page.Layout.Confidence > 0 {
			sum += page.Layout.Confidence
			count++
		}
		for _, lang := range page.DetectedLanguages {
			if lang.LanguageCode != "" {
				result.LanguageCodes = appendUnique(result.LanguageCodes, lang.LanguageCode)
			}
		}
	}
	if count > 0 {
		result.Confidence = sum / float32(count)
	}

	s.log.Debug().
		Int("pages", result.PageCount).
		Float32("confidence", result.Confidence).
		Msg("Document AI processing completed")

	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(start)
	return result, nil
}

// Close closes the underlying Document AI client.
func (s *DocumentAIService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

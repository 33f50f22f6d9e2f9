package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

const (
	// MaxFileSizeBytes is the synchronous processing size limit (20MB).
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the page limit for synchronous PDF processing.
	MaxPagesSync = 5
)

// GoogleVisionService implements Service using the Cloud Vision API's
// document text detection, which handles the dense small print and mixed
// typefaces of ID cards better than plain text detection.
type GoogleVisionService struct {
	client *vision.ImageAnnotatorClient
}

// NewGoogleVisionService creates the service with credentials from the
// environment, preferring inline GOOGLE_CREDENTIALS over a file path.
func NewGoogleVisionService(ctx context.Context) (Service, error) {
	const op = "NewGoogleVisionService"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Application default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &GoogleVisionService{client: client}, nil
}

// NewGoogleVisionServiceWithClient creates the service with an explicit
// client (for testing).
func NewGoogleVisionServiceWithClient(client *vision.ImageAnnotatorClient) Service {
	return &GoogleVisionService{client: client}
}

// ExtractImage runs document text detection on a single JPEG or PNG scan.
func (g *GoogleVisionService) ExtractImage(ctx context.Context, image io.Reader) (*TextResult, error) {
	const op = "ExtractImage"
	start := time.Now()

	imgBytes, err := readBounded(image)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read image data")
	}
	if !isJPEG(imgBytes) && !isPNG(imgBytes) {
		return nil, WrapOCRError(op, ErrUnsupportedFormat, "unrecognized image header")
	}

	resp, err := g.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imgBytes},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	})
	if err != nil {
		return nil, WrapOCRError(op, ErrDetectionFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrDetectionFailed, "no response from Vision API")
	}

	annotated := resp.Responses[0]
	if annotated.Error != nil {
		return nil, WrapOCRError(op, ErrDetectionFailed, fmt.Sprintf("Vision API error: %s", annotated.Error.Message))
	}
	if annotated.FullTextAnnotation == nil || strings.TrimSpace(annotated.FullTextAnnotation.Text) == "" {
		return nil, WrapOCRError(op, ErrEmptyDocument, "")
	}

	result := &TextResult{
		Text:      annotated.FullTextAnnotation.Text,
		PageCount: 1,
	}
	accumulateAnnotationMeta(result, annotated)

	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(start)
	return result, nil
}

// ExtractPDF runs document text detection on a PDF scan, up to 5 pages.
func (g *GoogleVisionService) ExtractPDF(ctx context.Context, pdf io.Reader) (*TextResult, error) {
	const op = "ExtractPDF"
	start := time.Now()

	pdfBytes, err := readBounded(pdf)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read PDF data")
	}
	if len(pdfBytes) < 4 || string(pdfBytes[:4]) != "%PDF" {
		return nil, WrapOCRError(op, ErrInvalidPDF, "missing PDF header")
	}

	resp, err := g.client.BatchAnnotateFiles(ctx, &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  pdfBytes,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	})
	if err != nil {
		return nil, WrapOCRError(op, ErrDetectionFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrDetectionFailed, "no response from Vision API")
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, WrapOCRError(op, ErrDetectionFailed, fmt.Sprintf("Vision API error: %s", fileResp.Error.Message))
	}

	result, err := collectPDFText(fileResp)
	if err != nil {
		return nil, WrapOCRError(op, err, "")
	}

	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(start)
	return result, nil
}

// collectPDFText concatenates page texts in reading order and averages
// detection confidence across pages.
func collectPDFText(fileResp *visionpb.AnnotateFileResponse) (*TextResult, error) {
	if len(fileResp.Responses) == 0 {
		return nil, ErrEmptyDocument
	}
	if len(fileResp.Responses) > MaxPagesSync {
		return nil, ErrTooManyPages
	}

	result := &TextResult{PageCount: len(fileResp.Responses)}
	var text strings.Builder

	for pageIdx, page := range fileResp.Responses {
		if page.Error != nil {
			return nil, fmt.Errorf("error processing page %d: %s", pageIdx+1, page.Error.Message)
		}
		if page.FullTextAnnotation == nil {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(page.FullTextAnnotation.Text)
		accumulateAnnotationMeta(result, page)
	}

	result.Text = text.String()
	if strings.TrimSpace(result.Text) == "" {
		return nil, ErrEmptyDocument
	}
	return result, nil
}

// accumulateAnnotationMeta folds one annotation response's confidence and
// language signals into the result. Confidence ends up as a running
// average so multi-page results stay in 0..1.
func accumulateAnnotationMeta(result *TextResult, resp *visionpb.AnnotateImageResponse) {
	var sum float32
	var count int
	for _, annotation := range resp.TextAnnotations {
		if annotation.Confidence > 0 {
			sum += annotation.Confidence
			count++
		}
	}
	if count > 0 {
		avg := sum / float32(count)
		if result.Confidence == 0 {
			result.Confidence = avg
		} else {
			result.Confidence = (result.Confidence + avg) / 2
		}
	}

	if resp.FullTextAnnotation == nil {
		return
	}
	seen := make(map[string]bool, len(result.LanguageCodes))
	for _, code := range result.LanguageCodes {
		seen[code] = true
	}
	for _, page := range resp.FullTextAnnotation.Pages {
		if page.Property == nil {
			continue
		}
		for _, lang := range page.Property.DetectedLanguages {
			if lang.LanguageCode != "" && !seen[lang.LanguageCode] {
				seen[lang.LanguageCode] = true
				result.LanguageCodes = append(result.LanguageCodes, lang.LanguageCode)
			}
		}
	}
}

// readBounded reads the full input while enforcing the size limit.
func readBounded(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, MaxFileSizeBytes+1))
	if err != nil {
		return nil, err
	}
	if n > MaxFileSizeBytes {
		return nil, ErrDocumentTooLarge
	}
	return buf.Bytes(), nil
}

func isJPEG(data []byte) bool {
	return len(data) > 2 && data[0] == 0xFF && data[1] == 0xD8
}

func isPNG(data []byte) bool {
	return len(data) > 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'})
}

// Close closes the underlying Vision client.
func (g *GoogleVisionService) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

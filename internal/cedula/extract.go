// Package cedula extracts structured identity fields from OCR text of
// Colombian cédulas de ciudadanía.
//
// The pipeline is pure computation over already-extracted text: normalize,
// classify the card side, run ordered strategy cascades per field group,
// resolve dates and, when several images cover one document, merge the
// per-image results by confidence. Image decoding and OCR happen upstream
// (see internal/ocr); this package never performs I/O.
//
// Absence of a match is the expected common case, represented as a nil
// field with low confidence, never as an error. Layout coverage is tuned
// to the historical cédula formats; the regex cascades are deliberately
// redundant because OCR noise defeats any single pattern.
package cedula

import (
	"github.com/rs/zerolog"

	"idtools/internal/logger"
	"idtools/pkg/models"
)

// Extractor runs the field-extraction pipeline on raw OCR text.
// It is stateless across calls and safe for concurrent use.
type Extractor struct {
	log zerolog.Logger
}

// NewExtractor creates an extractor with the standard component logger.
func NewExtractor() *Extractor {
	return &Extractor{log: logger.WithComponent("cedula-extract")}
}

// NewExtractorWithLogger creates an extractor with an injected logger,
// used by tests to keep output quiet.
func NewExtractorWithLogger(log zerolog.Logger) *Extractor {
	return &Extractor{log: log}
}

// Extract processes one image's raw text into an ExtractionResult.
// Malformed or empty input yields an all-null result, not an error.
func (e *Extractor) Extract(input models.ImageInput) models.ExtractionResult {
	result := models.ExtractionResult{
		Confidence:   models.AllLow(),
		DocumentType: models.DocumentUnknown,
	}

	text := Normalize(input.RawText)
	if text == "" {
		e.log.Debug().Str("source", input.Name).Msg("Empty text after normalization")
		return result
	}

	result.DocumentType = ClassifyDocumentType(text)

	// The classified side gates which strategy groups run: names and the
	// document number live on the front, dates on the back. An unknown
	// side runs everything as a best effort.
	runFront := result.DocumentType == models.DocumentFront ||
		result.DocumentType == models.DocumentFull ||
		result.DocumentType == models.DocumentUnknown
	runBack := result.DocumentType == models.DocumentBack ||
		result.DocumentType == models.DocumentFull ||
		result.DocumentType == models.DocumentUnknown

	if runFront {
		result.Fields.DocumentNumber, result.Confidence.DocumentNumber = ExtractDocumentNumber(text)
		ExtractNames(text, &result.Fields, &result.Confidence)
	}
	if runBack {
		result.Fields.BirthDate, result.Confidence.BirthDate = ResolveDate(text, DateBirth)
		result.Fields.IssueDate, result.Confidence.IssueDate = ResolveDate(text, DateIssue)
	}

	result.Success = anyFieldSet(result.Fields)

	e.log.Debug().
		Str("source", input.Name).
		Str("document_type", string(result.DocumentType)).
		Bool("success", result.Success).
		Msg("Extraction completed")

	return result
}

// ExtractAll processes every input independently and merges the per-image
// results into one final record. A single input is returned unchanged.
func (e *Extractor) ExtractAll(inputs []models.ImageInput) models.ExtractionResult {
	results := make([]models.ExtractionResult, 0, len(inputs))
	for _, in := range inputs {
		results = append(results, e.Extract(in))
	}
	return Merge(results)
}

func anyFieldSet(f models.ExtractedFields) bool {
	return f.DocumentNumber != nil || f.FirstName != nil || f.MiddleName != nil ||
		f.FirstSurname != nil || f.SecondSurname != nil ||
		f.BirthDate != nil || f.IssueDate != nil
}

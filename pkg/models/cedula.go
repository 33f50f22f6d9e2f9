package models

// ConfidenceTier is the qualitative trust label attached to every extracted
// field. Pattern-based strategies assign tiers directly; numeric upstream
// scores (0-100) are mapped to tiers at the package boundary.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// Rank orders tiers for comparison: high > medium > low.
func (t ConfidenceTier) Rank() int {
	switch t {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// DocumentType identifies which side(s) of a cédula a text blob represents.
type DocumentType string

const (
	DocumentFront   DocumentType = "front"
	DocumentBack    DocumentType = "back"
	DocumentFull    DocumentType = "full"
	DocumentUnknown DocumentType = "unknown"
)

// ExtractedFields holds the seven cédula fields. A nil pointer means the
// field was not found; it is never represented as an empty string, since
// the merger distinguishes "absent" from "present but empty".
type ExtractedFields struct {
	DocumentNumber *string `json:"numero_documento"`
	FirstName      *string `json:"primer_nombre"`
	MiddleName     *string `json:"segundo_nombre"`
	FirstSurname   *string `json:"primer_apellido"`
	SecondSurname  *string `json:"segundo_apellido"`
	BirthDate      *string `json:"fecha_nacimiento"` // ISO YYYY-MM-DD
	IssueDate      *string `json:"fecha_expedicion"` // ISO YYYY-MM-DD
}

// FieldConfidence carries one tier per field in ExtractedFields.
// The tier for a nil field carries no meaning and is set to low.
type FieldConfidence struct {
	DocumentNumber ConfidenceTier `json:"numero_documento"`
	FirstName      ConfidenceTier `json:"primer_nombre"`
	MiddleName     ConfidenceTier `json:"segundo_nombre"`
	FirstSurname   ConfidenceTier `json:"primer_apellido"`
	SecondSurname  ConfidenceTier `json:"segundo_apellido"`
	BirthDate      ConfidenceTier `json:"fecha_nacimiento"`
	IssueDate      ConfidenceTier `json:"fecha_expedicion"`
}

// AllLow returns a FieldConfidence with every tier set to low, the
// starting point before any strategy has run.
func AllLow() FieldConfidence {
	return FieldConfidence{
		DocumentNumber: ConfidenceLow,
		FirstName:      ConfidenceLow,
		MiddleName:     ConfidenceLow,
		FirstSurname:   ConfidenceLow,
		SecondSurname:  ConfidenceLow,
		BirthDate:      ConfidenceLow,
		IssueDate:      ConfidenceLow,
	}
}

// ImageInput is one raw-text blob obtained from an external vision service.
// The core never decodes images; text extraction happens upstream.
type ImageInput struct {
	// Name identifies the source file, used only for logging and reports.
	Name string `json:"name"`

	// RawText is the OCR output for this image or PDF.
	RawText string `json:"raw_text"`

	// SourceType is "image" or "pdf".
	SourceType string `json:"source_image_type"`
}

// ExtractionResult is the outcome of extracting one image, or of merging
// several per-image results into a final record.
type ExtractionResult struct {
	// Success reports whether at least one field was found.
	Success bool `json:"success"`

	// Fields holds the extracted values, nil where nothing matched.
	Fields ExtractedFields `json:"fields"`

	// Confidence holds one tier per field, parallel to Fields.
	Confidence FieldConfidence `json:"confidence"`

	// DocumentType is the classified side for this result.
	DocumentType DocumentType `json:"documentType"`

	// Score is an optional 0-100 numeric confidence supplied by certain
	// upstream sources (LLM extractor, OCR average confidence). It is used
	// strictly for tie-breaking during merge and is absent otherwise.
	Score *float32 `json:"score,omitempty"`
}

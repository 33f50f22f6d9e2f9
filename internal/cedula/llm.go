package cedula

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"idtools/internal/logger"
	"idtools/pkg/models"
)

// LLMConfig configures the model-based extractor.
type LLMConfig struct {
	Model       string  // e.g. gpt-4o-mini
	Temperature float32 // kept low, extraction is not a creative task
	MaxRetries  int     // attempts before giving up on parseable JSON
}

// DefaultLLMConfig returns the configuration used when env vars are unset.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		MaxRetries:  3,
	}
}

// LLMExtractor obtains cédula fields from a chat model. Its results carry
// a 0-100 numeric confidence per record, which the merger uses for
// tie-breaking against pattern-derived results.
type LLMExtractor struct {
	client *openai.Client
	config LLMConfig
	log    zerolog.Logger
}

// llmResponse is the JSON shape requested from the model. Confidence is
// accepted as a string and converted later, because models return it as
// either a bare number or a quoted one.
type llmResponse struct {
	DocumentNumber string `json:"numero_documento"`
	FirstName      string `json:"primer_nombre"`
	MiddleName     string `json:"segundo_nombre"`
	FirstSurname   string `json:"primer_apellido"`
	SecondSurname  string `json:"segundo_apellido"`
	BirthDate      string `json:"fecha_nacimiento"`
	IssueDate      string `json:"fecha_expedicion"`
	Confidence     string `json:"confidence"`
}

// NewLLMExtractor creates the extractor with dependencies from environment.
func NewLLMExtractor() (*LLMExtractor, error) {
	const op = "NewLLMExtractor"

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, WrapExtractionError(op, ErrMissingAPIKey, "")
	}

	config := DefaultLLMConfig()
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.Model = model
	}

	return NewLLMExtractorWithDeps(openai.NewClient(apiKey), config), nil
}

// NewLLMExtractorWithDeps creates the extractor with explicit dependencies.
func NewLLMExtractorWithDeps(client *openai.Client, config LLMConfig) *LLMExtractor {
	return &LLMExtractor{
		client: client,
		config: config,
		log:    logger.WithComponent("cedula-llm"),
	}
}

// ExtractFromText asks the model for the seven cédula fields and returns
// them as an ExtractionResult with a numeric score attached. The result is
// one more merge source alongside the pattern pipeline's per-image results.
func (e *LLMExtractor) ExtractFromText(ctx context.Context, rawText string) (*models.ExtractionResult, error) {
	const op = "ExtractFromText"

	text := Normalize(rawText)
	if text == "" {
		return nil, WrapExtractionError(op, ErrEmptyInput, "")
	}

	e.log.Debug().
		Int("text_length", len(text)).
		Str("model", e.config.Model).
		Msg("Sending extraction request to model")

	var lastErr error
	for attempt := 1; attempt <= e.config.MaxRetries; attempt++ {
		resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       e.config.Model,
			Temperature: e.config.Temperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: llmSystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: buildLLMPrompt(text)},
			},
			MaxTokens: 500,
		})
		if err != nil {
			lastErr = err
			e.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_retries", e.config.MaxRetries).
				Msg("Model request failed, retrying")
			continue
		}

		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("no response choices from model")
			continue
		}

		content := resp.Choices[0].Message.Content
		parsed, err := parseLLMResponse(content)
		if err != nil {
			lastErr = err
			e.log.Warn().
				Err(err).
				Str("response", content).
				Int("attempt", attempt).
				Msg("Failed to parse model response, retrying")
			continue
		}

		result := e.buildResult(parsed)
		e.log.Info().
			Bool("success", result.Success).
			Int("attempt", attempt).
			Msg("Model extraction completed")
		return result, nil
	}

	return nil, WrapExtractionError(op, ErrLLMExtractionFailed,
		fmt.Sprintf("all %d attempts failed, last error: %v", e.config.MaxRetries, lastErr))
}

const llmSystemPrompt = `Eres un extractor de datos de cédulas de ciudadanía colombianas.
Recibes el texto OCR de una cédula y devuelves ÚNICAMENTE un objeto JSON con estos campos:

{
  "numero_documento": "solo dígitos, sin puntos",
  "primer_nombre": "...",
  "segundo_nombre": "...",
  "primer_apellido": "...",
  "segundo_apellido": "...",
  "fecha_nacimiento": "YYYY-MM-DD",
  "fecha_expedicion": "YYYY-MM-DD",
  "confidence": "0-100"
}

Reglas:
- Usa null para los campos que no aparecen en el texto.
- Las fechas SIEMPRE en formato YYYY-MM-DD.
- "confidence" es tu confianza global de 0 a 100.
- Devuelve SOLO el JSON, sin texto antes ni después y sin trailing commas.`

func buildLLMPrompt(text string) string {
	var prompt strings.Builder
	prompt.WriteString("Texto OCR de la cédula:\n\n")
	prompt.WriteString(text)
	prompt.WriteString("\n\nExtrae los campos y devuelve solo el JSON.")
	return prompt.String()
}

// parseLLMResponse decodes the model output, tolerating a numeric or quoted
// confidence and a markdown code fence around the JSON.
func parseLLMResponse(content string) (*llmResponse, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON response: %w", err)
	}

	parsed := &llmResponse{
		DocumentNumber: getString(raw, "numero_documento"),
		FirstName:      getString(raw, "primer_nombre"),
		MiddleName:     getString(raw, "segundo_nombre"),
		FirstSurname:   getString(raw, "primer_apellido"),
		SecondSurname:  getString(raw, "segundo_apellido"),
		BirthDate:      getString(raw, "fecha_nacimiento"),
		IssueDate:      getString(raw, "fecha_expedicion"),
	}

	switch v := raw["confidence"].(type) {
	case string:
		parsed.Confidence = v
	case float64:
		parsed.Confidence = strconv.FormatFloat(v, 'f', 0, 64)
	default:
		parsed.Confidence = "50"
	}

	return parsed, nil
}

// buildResult converts the parsed response into an ExtractionResult. The
// numeric score maps to the shared tier scale; values the pipeline would
// normally capitalize are capitalized here too so merge comparisons stay
// consistent.
func (e *LLMExtractor) buildResult(parsed *llmResponse) *models.ExtractionResult {
	score := float32(50)
	if s, err := strconv.ParseFloat(parsed.Confidence, 32); err == nil && s >= 0 && s <= 100 {
		score = float32(s)
	}
	tier := TierFromScore(score)

	result := &models.ExtractionResult{
		Confidence:   models.AllLow(),
		DocumentType: models.DocumentUnknown,
		Score:        &score,
	}

	setField := func(value string, isName bool, dst **string, conf *models.ConfidenceTier) {
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, "null") {
			return
		}
		if isName {
			value = Capitalize(value)
		}
		*dst = &value
		*conf = tier
	}

	setField(parsed.DocumentNumber, false, &result.Fields.DocumentNumber, &result.Confidence.DocumentNumber)
	setField(parsed.FirstName, true, &result.Fields.FirstName, &result.Confidence.FirstName)
	setField(parsed.MiddleName, true, &result.Fields.MiddleName, &result.Confidence.MiddleName)
	setField(parsed.FirstSurname, true, &result.Fields.FirstSurname, &result.Confidence.FirstSurname)
	setField(parsed.SecondSurname, true, &result.Fields.SecondSurname, &result.Confidence.SecondSurname)
	setField(parsed.BirthDate, false, &result.Fields.BirthDate, &result.Confidence.BirthDate)
	setField(parsed.IssueDate, false, &result.Fields.IssueDate, &result.Confidence.IssueDate)

	result.Success = anyFieldSet(result.Fields)
	return result
}

// getString safely extracts a string value from a decoded JSON map.
func getString(m map[string]interface{}, key string) string {
	if value, exists := m[key]; exists && value != nil {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return ""
}

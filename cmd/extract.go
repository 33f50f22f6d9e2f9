package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"idtools/internal/cedula"
	"idtools/internal/logger"
	"idtools/internal/ocr"
	"idtools/pkg/models"
)

// MaxInputFiles caps the number of source images per document: a cédula
// has a front and a back, nothing more.
const MaxInputFiles = 2

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract identity fields from cédula scans",
	Long: `Extract structured identity fields from one or two cédula scans.

Each input may be an image (JPEG/PNG), a PDF, or - with --text - a file
containing raw OCR text. Images and PDFs are sent to the configured OCR
provider first; text files skip that step entirely and need no cloud
credentials. When two inputs are given (front and back), the per-image
results are merged field by field, preferring higher-confidence values.

With --llm, an OpenAI model extracts the same fields from the combined
text as one more merge source. Requires OPENAI_API_KEY.`,
	Example: `  # Front and back images
  idtools extract front.jpg back.jpg

  # Already-OCR'd text, JSON output to file
  idtools extract --text scan.txt --json -o result.json

  # Add the LLM extractor as a merge source
  idtools extract front.jpg back.jpg --llm`,
	Args: cobra.RangeArgs(1, MaxInputFiles),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().Bool("text", false, "Treat inputs as raw OCR text files")
	extractCmd.Flags().String("provider", "", "OCR provider: vision or documentai (default from OCR_PROVIDER)")
	extractCmd.Flags().Bool("llm", false, "Add an OpenAI-based extraction as a merge source")
	extractCmd.Flags().Bool("json", false, "Output as JSON")
	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	textInput, _ := cmd.Flags().GetBool("text")
	provider, _ := cmd.Flags().GetString("provider")
	useLLM, _ := cmd.Flags().GetBool("llm")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	log.Info().
		Strs("files", args).
		Bool("text_input", textInput).
		Bool("llm", useLLM).
		Msg("Starting extraction")

	ctx, cancel := signalContext(timeoutSecs, log)
	defer cancel()

	inputs, scores, err := gatherInputs(ctx, args, textInput, provider, log)
	if err != nil {
		return err
	}

	extractor := cedula.NewExtractor()
	results := make([]models.ExtractionResult, 0, len(inputs)+1)
	for i, input := range inputs {
		result := extractor.Extract(input)
		// The OCR provider's average confidence, scaled to 0-100, serves as
		// this source's numeric tie-break score.
		if scores[i] != nil {
			result.Score = scores[i]
		}
		results = append(results, result)
	}

	if useLLM {
		llmResult, err := runLLMExtraction(ctx, inputs, log)
		if err != nil {
			return err
		}
		results = append(results, *llmResult)
	}

	final := cedula.Merge(results)

	log.Info().
		Bool("success", final.Success).
		Str("document_type", string(final.DocumentType)).
		Msg("Extraction completed")

	return writeResult(final, args, outputPath, jsonOutput, log)
}

// gatherInputs turns the argument list into raw-text inputs, running OCR
// where needed. The parallel scores slice carries each source's numeric
// confidence, nil for text files that have none.
func gatherInputs(ctx context.Context, args []string, textInput bool, provider string, log zerolog.Logger) ([]models.ImageInput, []*float32, error) {
	var service ocr.Service
	if !textInput {
		var err error
		service, err = newOCRService(ctx, provider, log)
		if err != nil {
			return nil, nil, err
		}
	}

	inputs := make([]models.ImageInput, 0, len(args))
	scores := make([]*float32, 0, len(args))

	for _, path := range args {
		if textInput {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to read text file %s: %w", path, err)
			}
			inputs = append(inputs, models.ImageInput{
				Name:       filepath.Base(path),
				RawText:    string(data),
				SourceType: "image",
			})
			scores = append(scores, nil)
			continue
		}

		file, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
		}

		sourceType := "image"
		var result *ocr.TextResult
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			sourceType = "pdf"
			result, err = service.ExtractPDF(ctx, file)
		} else {
			result, err = service.ExtractImage(ctx, file)
		}
		file.Close()
		if err != nil {
			return nil, nil, translateOCRError(err, path, log)
		}

		log.Info().
			Str("file", path).
			Int("text_length", len(result.Text)).
			Float32("confidence", result.Confidence).
			Msg("OCR completed")

		score := result.Score()
		inputs = append(inputs, models.ImageInput{
			Name:       filepath.Base(path),
			RawText:    result.Text,
			SourceType: sourceType,
		})
		scores = append(scores, &score)
	}

	return inputs, scores, nil
}

func newOCRService(ctx context.Context, provider string, log zerolog.Logger) (ocr.Service, error) {
	if provider == "" {
		provider = os.Getenv("OCR_PROVIDER")
	}

	switch provider {
	case "documentai":
		return ocr.NewDocumentAIService(ctx)
	case "", "vision":
		hasCredentials := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
			os.Getenv("GOOGLE_CREDENTIALS") != ""
		if !hasCredentials {
			log.Error().Msg("Google Cloud credentials not configured")
			return nil, fmt.Errorf("Google Cloud credentials not configured. Set GOOGLE_APPLICATION_CREDENTIALS " +
				"to a service account JSON file path, or GOOGLE_CREDENTIALS to inline JSON, " +
				"or pass --text to skip OCR entirely")
		}
		return ocr.NewGoogleVisionService(ctx)
	default:
		return nil, fmt.Errorf("unknown OCR provider %q (expected vision or documentai)", provider)
	}
}

// runLLMExtraction feeds the concatenated raw text of all inputs to the
// OpenAI extractor and returns its result as one more merge source.
func runLLMExtraction(ctx context.Context, inputs []models.ImageInput, log zerolog.Logger) (*models.ExtractionResult, error) {
	extractor, err := cedula.NewLLMExtractor()
	if err != nil {
		if errors.Is(err, cedula.ErrMissingAPIKey) {
			return nil, fmt.Errorf("--llm requires OPENAI_API_KEY to be set")
		}
		return nil, fmt.Errorf("failed to create LLM extractor: %w", err)
	}

	var combined strings.Builder
	for _, input := range inputs {
		if combined.Len() > 0 {
			combined.WriteString("\n\n")
		}
		combined.WriteString(input.RawText)
	}

	result, err := extractor.ExtractFromText(ctx, combined.String())
	if err != nil {
		log.Error().Err(err).Msg("LLM extraction failed")
		return nil, fmt.Errorf("LLM extraction failed: %w", err)
	}
	return result, nil
}

// signalContext creates a context with timeout that also cancels on
// SIGINT/SIGTERM.
func signalContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// translateOCRError turns provider failures into actionable messages.
func translateOCRError(err error, path string, log zerolog.Logger) error {
	log.Error().Err(err).Str("file", path).Msg("OCR processing failed")

	errStr := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("OCR timed out for %s. Try increasing --timeout", path)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("OCR was canceled")
	case errors.Is(err, ocr.ErrDocumentTooLarge):
		return fmt.Errorf("%s is too large (maximum 20MB)", path)
	case errors.Is(err, ocr.ErrTooManyPages):
		return fmt.Errorf("%s has too many pages (maximum 5)", path)
	case errors.Is(err, ocr.ErrInvalidPDF):
		return fmt.Errorf("%s is not a valid PDF", path)
	case errors.Is(err, ocr.ErrUnsupportedFormat):
		return fmt.Errorf("%s is not a supported image format (JPEG or PNG)", path)
	case errors.Is(err, ocr.ErrEmptyDocument):
		return fmt.Errorf("no readable text found in %s", path)
	case strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "auth:"):
		return fmt.Errorf("Google Cloud authentication failed. Check GOOGLE_APPLICATION_CREDENTIALS "+
			"or GOOGLE_CREDENTIALS and the service account's roles. Original error: %v", err)
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return fmt.Errorf("permission denied. Ensure the service account can call the OCR API")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") || strings.Contains(errStr, "quota"):
		return fmt.Errorf("API quota exceeded. Check project quotas in the Google Cloud Console")
	default:
		return fmt.Errorf("OCR processing failed for %s: %w", path, err)
	}
}

// writeResult renders the final record as JSON or a text report.
func writeResult(result models.ExtractionResult, files []string, outputPath string, jsonOutput bool, log zerolog.Logger) error {
	var outputData []byte

	if jsonOutput {
		var err error
		outputData, err = json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	} else {
		outputData = []byte(formatReport(result, files))
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(outputData)).
			Msg("Results written to file")
		return nil
	}

	if _, err := os.Stdout.Write(outputData); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !jsonOutput {
		fmt.Println()
	}
	return nil
}

func formatReport(result models.ExtractionResult, files []string) string {
	var out strings.Builder

	out.WriteString(fmt.Sprintf("=== Extraction results for %s ===\n", strings.Join(files, ", ")))
	out.WriteString(fmt.Sprintf("Document type: %s\n", result.DocumentType))
	out.WriteString(fmt.Sprintf("Success: %t\n\n", result.Success))

	writeField := func(label string, value *string, tier models.ConfidenceTier) {
		if value == nil {
			out.WriteString(fmt.Sprintf("%-18s -\n", label))
			return
		}
		out.WriteString(fmt.Sprintf("%-18s %s (%s)\n", label, *value, tier))
	}

	writeField("Document number:", result.Fields.DocumentNumber, result.Confidence.DocumentNumber)
	writeField("First name:", result.Fields.FirstName, result.Confidence.FirstName)
	writeField("Middle name:", result.Fields.MiddleName, result.Confidence.MiddleName)
	writeField("First surname:", result.Fields.FirstSurname, result.Confidence.FirstSurname)
	writeField("Second surname:", result.Fields.SecondSurname, result.Confidence.SecondSurname)
	writeField("Birth date:", result.Fields.BirthDate, result.Confidence.BirthDate)
	writeField("Issue date:", result.Fields.IssueDate, result.Confidence.IssueDate)

	return out.String()
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"idtools/internal/cedula"
	"idtools/internal/logger"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify which side of a cédula a scan shows",
	Long: `Classify a single scan as the front, back, or both sides of a cédula.

The input may be an image (JPEG/PNG), a PDF, or - with --text - a file
containing raw OCR text. Classification counts side-specific label
phrases in the text; scans with too few recognizable labels come back
as "unknown".`,
	Example: `  idtools classify front.jpg
  idtools classify --text scan.txt --json`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().Bool("text", false, "Treat input as a raw OCR text file")
	classifyCmd.Flags().String("provider", "", "OCR provider: vision or documentai (default from OCR_PROVIDER)")
	classifyCmd.Flags().Bool("json", false, "Output as JSON")
	classifyCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

func runClassify(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("classify")

	textInput, _ := cmd.Flags().GetBool("text")
	provider, _ := cmd.Flags().GetString("provider")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	ctx, cancel := signalContext(timeoutSecs, log)
	defer cancel()

	inputs, _, err := gatherInputs(ctx, args, textInput, provider, log)
	if err != nil {
		return err
	}

	docType := cedula.ClassifyDocumentType(cedula.Normalize(inputs[0].RawText))

	log.Info().
		Str("file", args[0]).
		Str("document_type", string(docType)).
		Msg("Classification completed")

	if jsonOutput {
		out := struct {
			File         string `json:"file"`
			DocumentType string `json:"document_type"`
		}{File: args[0], DocumentType: string(docType)}

		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		if _, err := os.Stdout.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	fmt.Printf("%s: %s\n", args[0], docType)
	return nil
}

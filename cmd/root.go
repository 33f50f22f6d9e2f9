package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"idtools/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "idtools",
	Short: "idtools - field extraction from scanned Colombian ID cards",
	Long: `idtools extracts structured identity fields (names, document number,
birth and issue dates) from scanned cédulas de ciudadanía.

Raw text is obtained through Google Cloud Vision or Document AI, then a
cascade of layout-aware pattern strategies turns it into a structured
record with per-field confidence. Results from multiple images (front and
back) are merged into one record.`,
	Version: version,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

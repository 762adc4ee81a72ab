package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docfuse/docfuse/internal/config"
	"github.com/docfuse/docfuse/internal/document"
	"github.com/docfuse/docfuse/internal/output"
)

// reconcileCmd aligns one document's structure with its ground-truth
// fragments.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile one document's structure with its text fragments",
	Long: `Reconcile a structural element stream (markdown or JSON/YAML dump) with
the exact text fragments extracted from the source PDF.

Examples:
  docfuse reconcile --structure doc.mmd --fragments fragments.json
  docfuse reconcile --structure doc.json --fragments fragments.yaml --regions regions.json
  docfuse reconcile --structure doc.mmd --fragments fragments.json --pdf source.pdf --format tei --output doc.xml`,
	SilenceUsage: true,
	RunE:         runReconcileCommand,
}

// configToDocumentConfig maps centralized configuration to document.Config.
// CLI flags override config file values.
func configToDocumentConfig(cfg *config.Config, cmd *cobra.Command) document.Config {
	docConfig := document.Config{
		Reconcile:       cfg.Reconcile.ToEngineConfig(),
		Format:          output.Format(cfg.Output.Format),
		IncludeMetadata: cfg.Output.IncludeMetadata,
	}

	if cmd.Flags().Changed("format") {
		format, _ := cmd.Flags().GetString("format")
		docConfig.Format = output.Format(format)
	}
	if cmd.Flags().Changed("include-metadata") {
		docConfig.IncludeMetadata, _ = cmd.Flags().GetBool("include-metadata")
	}
	return docConfig
}

func runReconcileCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	structure, _ := cmd.Flags().GetString("structure")
	fragments, _ := cmd.Flags().GetString("fragments")
	regions, _ := cmd.Flags().GetString("regions")
	pdf, _ := cmd.Flags().GetString("pdf")

	parser, err := document.NewParser(configToDocumentConfig(cfg, cmd))
	if err != nil {
		return err
	}

	res, err := parser.Parse(document.Input{
		Structure: structure,
		Fragments: fragments,
		Regions:   regions,
		PDF:       pdf,
	})
	if err != nil {
		return err
	}

	outputFile := cfg.Output.File
	if cmd.Flags().Changed("output") {
		outputFile, _ = cmd.Flags().GetString("output")
	}
	if outputFile == "" {
		_, err = cmd.OutOrStdout().Write(res.Output)
		return err
	}

	res.OutputPath = outputFile
	if err := writeResultFile(res); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d elements, %d hallucination warnings)\n",
		outputFile, res.Stats.TotalElements, res.Stats.Hallucinations)
	return nil
}

func writeResultFile(res *document.Result) error {
	if dir := filepath.Dir(res.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(res.OutputPath, res.Output, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", res.OutputPath, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().String("structure", "", "structural elements file (.md, .mmd, .json, .yaml)")
	reconcileCmd.Flags().String("fragments", "", "ground-truth fragments file (.json, .yaml)")
	reconcileCmd.Flags().String("regions", "", "layout regions file (.json, .yaml)")
	reconcileCmd.Flags().String("pdf", "", "source PDF for page cross-checking")
	reconcileCmd.Flags().String("format", "", "output format (markdown, json, text, tei)")
	reconcileCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	reconcileCmd.Flags().Bool("include-metadata", false, "include run metadata in the output")

	_ = reconcileCmd.MarkFlagRequired("structure")
	_ = reconcileCmd.MarkFlagRequired("fragments")
}

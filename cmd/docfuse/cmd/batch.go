package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/docfuse/docfuse/internal/document"
)

// batchManifest is the on-disk format of a batch run: a list of document
// inputs.
type batchManifest struct {
	Documents []document.Input `yaml:"documents" json:"documents"`
}

// batchCmd processes several documents from a manifest file.
var batchCmd = &cobra.Command{
	Use:   "batch <manifest.yaml>",
	Short: "Reconcile multiple documents from a manifest",
	Long: `Process multiple documents listed in a YAML manifest. Each entry names
the structure and fragments files (and optionally regions and a source PDF):

  documents:
    - name: paper
      structure: paper.mmd
      fragments: paper-fragments.json
    - structure: report.json
      fragments: report-fragments.yaml
      pdf: report.pdf

Examples:
  docfuse batch manifest.yaml
  docfuse batch manifest.yaml --output-dir results/ --continue-on-error
  docfuse batch manifest.yaml --format json`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}
	var manifest batchManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parsing manifest %s: %w", args[0], err)
	}
	if len(manifest.Documents) == 0 {
		return fmt.Errorf("manifest %s lists no documents", args[0])
	}

	outputDir := cfg.Batch.OutputDir
	if cmd.Flags().Changed("output-dir") {
		outputDir, _ = cmd.Flags().GetString("output-dir")
	}
	continueOnError := cfg.Batch.ContinueOnError
	if cmd.Flags().Changed("continue-on-error") {
		continueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}

	parser, err := document.NewParser(configToDocumentConfig(cfg, cmd))
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := parser.ParseBatch(manifest.Documents, outputDir, continueOnError)

	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
			fmt.Fprintf(cmd.OutOrStdout(), "ok   %s -> %s (%d elements)\n",
				res.Name, res.OutputPath, res.Stats.TotalElements)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "fail %s: %s\n", res.Name, res.Error)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d/%d documents succeeded in %s\n",
		succeeded, len(manifest.Documents), time.Since(start).Round(time.Millisecond))
	return err
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("output-dir", "", "directory for rendered documents")
	batchCmd.Flags().Bool("continue-on-error", false, "keep processing after a document fails")
	batchCmd.Flags().String("format", "", "output format (markdown, json, text, tei)")
	batchCmd.Flags().Bool("include-metadata", false, "include run metadata in the output")
}

// Package document wires ingestion, reconciliation, and output generation
// into a per-document pipeline.
package document

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docfuse/docfuse/internal/ingest"
	"github.com/docfuse/docfuse/internal/output"
	"github.com/docfuse/docfuse/internal/reconcile"
)

// Input names the source files of one document run. Regions and PDF are
// optional.
type Input struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Structure string `json:"structure" yaml:"structure"`
	Fragments string `json:"fragments" yaml:"fragments"`
	Regions   string `json:"regions,omitempty" yaml:"regions,omitempty"`
	PDF       string `json:"pdf,omitempty" yaml:"pdf,omitempty"`
}

// DisplayName returns the explicit name or falls back to the structure file
// basename.
func (in Input) DisplayName() string {
	if in.Name != "" {
		return in.Name
	}
	base := filepath.Base(in.Structure)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Config holds the pipeline options for a parser.
type Config struct {
	Reconcile       reconcile.Config
	Format          output.Format
	IncludeMetadata bool
}

// DefaultConfig returns a pipeline configuration with markdown output.
func DefaultConfig() Config {
	return Config{
		Reconcile: reconcile.DefaultConfig(),
		Format:    output.FormatMarkdown,
	}
}

// Result reports one completed (or failed) document run.
type Result struct {
	RunID      string          `json:"run_id" yaml:"run_id"`
	Name       string          `json:"name" yaml:"name"`
	Success    bool            `json:"success" yaml:"success"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
	Elapsed    time.Duration   `json:"elapsed_ns" yaml:"elapsed_ns"`
	Stats      reconcile.Stats `json:"stats" yaml:"stats"`
	Output     []byte          `json:"-" yaml:"-"`
	OutputPath string          `json:"output_path,omitempty" yaml:"output_path,omitempty"`
}

// Parser runs the full pipeline for one document at a time. It is safe to
// reuse across documents but not across goroutines.
type Parser struct {
	cfg    Config
	engine *reconcile.Engine
	gen    *output.Generator
	logger *slog.Logger
}

// NewParser validates the configuration and builds the pipeline.
func NewParser(cfg Config) (*Parser, error) {
	engine, err := reconcile.New(cfg.Reconcile)
	if err != nil {
		return nil, fmt.Errorf("building reconciliation engine: %w", err)
	}
	gen, err := output.New(cfg.Format, cfg.IncludeMetadata)
	if err != nil {
		return nil, err
	}
	return &Parser{
		cfg:    cfg,
		engine: engine,
		gen:    gen,
		logger: slog.Default().With("component", "document"),
	}, nil
}

// Parse loads the input streams, reconciles them, and renders the output.
// The returned result always carries the run ID and document name, even on
// failure.
func (p *Parser) Parse(in Input) (*Result, error) {
	res := &Result{
		RunID: uuid.NewString(),
		Name:  in.DisplayName(),
	}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	p.logger.Info("parsing document", "name", res.Name, "run_id", res.RunID)

	structural, err := ingest.LoadStructural(in.Structure)
	if err != nil {
		return fail(res, fmt.Errorf("loading structural elements: %w", err))
	}
	fragments, err := ingest.LoadFragments(in.Fragments)
	if err != nil {
		return fail(res, fmt.Errorf("loading fragments: %w", err))
	}

	var regions []reconcile.LayoutRegion
	if in.Regions != "" {
		if regions, err = ingest.LoadRegions(in.Regions); err != nil {
			return fail(res, fmt.Errorf("loading regions: %w", err))
		}
	}
	if in.PDF != "" {
		if err := ingest.CrossCheckPDF(in.PDF, fragments); err != nil {
			return fail(res, err)
		}
	}

	elements := p.engine.Reconcile(structural, fragments, regions)
	res.Stats = reconcile.Summarize(elements)

	rendered, err := p.gen.Render(output.Document{
		Name:     res.Name,
		RunID:    res.RunID,
		Elements: elements,
		Stats:    res.Stats,
	})
	if err != nil {
		return fail(res, fmt.Errorf("rendering output: %w", err))
	}
	res.Output = rendered
	res.Success = true

	p.logger.Info("document parsed",
		"name", res.Name, "elements", res.Stats.TotalElements,
		"hallucinations", res.Stats.Hallucinations)
	return res, nil
}

// ParseBatch runs the pipeline over several inputs, writing each rendered
// document into outputDir. With continueOnError set, individual failures are
// recorded in their result instead of aborting the batch.
func (p *Parser) ParseBatch(inputs []Input, outputDir string, continueOnError bool) ([]*Result, error) {
	results := make([]*Result, 0, len(inputs))
	for _, in := range inputs {
		res, err := p.Parse(in)
		if err != nil {
			results = append(results, res)
			if continueOnError {
				p.logger.Error("document failed", "name", res.Name, "error", err)
				continue
			}
			return results, err
		}

		res.OutputPath = filepath.Join(outputDir,
			fmt.Sprintf("%s.%s", res.Name, p.gen.Extension()))
		if err := p.saveResult(res); err != nil {
			res.Success = false
			res.Error = err.Error()
			results = append(results, res)
			if continueOnError {
				p.logger.Error("saving output failed", "name", res.Name, "error", err)
				continue
			}
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (p *Parser) saveResult(res *Result) error {
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

func fail(res *Result, err error) (*Result, error) {
	res.Error = err.Error()
	return res, err
}

// Package ingest loads the three input streams of a reconciliation run from
// files: structural elements, ground-truth fragments, and layout regions.
// JSON and YAML dumps are supported for every stream; structural elements may
// additionally come from markdown.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/docfuse/docfuse/internal/reconcile"
	"github.com/docfuse/docfuse/internal/structure"
)

// ErrUnsupportedFormat is returned for file extensions no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported input format")

var structuralKinds = map[reconcile.Kind]bool{
	reconcile.KindHeader:    true,
	reconcile.KindParagraph: true,
	reconcile.KindList:      true,
	reconcile.KindFigure:    true,
	reconcile.KindTable:     true,
}

// LoadStructural reads structural elements from a .json, .yaml, .md, or .mmd
// file.
func LoadStructural(path string) ([]reconcile.StructuralElement, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".mmd":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return structure.ParseMarkdown(data, 1), nil
	}

	var elements []reconcile.StructuralElement
	if err := decodeFile(path, &elements); err != nil {
		return nil, err
	}
	for i, el := range elements {
		if !structuralKinds[el.Kind] {
			return nil, fmt.Errorf("structural element %d: unknown kind %q", i, el.Kind)
		}
	}
	return elements, nil
}

// LoadFragments reads ground-truth fragments from a .json or .yaml file and
// validates them against the upstream contract.
func LoadFragments(path string) ([]reconcile.GroundTruthFragment, error) {
	var fragments []reconcile.GroundTruthFragment
	if err := decodeFile(path, &fragments); err != nil {
		return nil, err
	}
	if err := ValidateFragments(fragments); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fragments, nil
}

// LoadRegions reads layout regions from a .json or .yaml file. Regions are
// optional context; an empty file yields an empty slice.
func LoadRegions(path string) ([]reconcile.LayoutRegion, error) {
	var regions []reconcile.LayoutRegion
	if err := decodeFile(path, &regions); err != nil {
		return nil, err
	}
	return regions, nil
}

// ValidateFragments enforces the ground-truth contract: non-empty text, page
// numbering from 1, and an ordered bounding box.
func ValidateFragments(fragments []reconcile.GroundTruthFragment) error {
	for i, fr := range fragments {
		if strings.TrimSpace(fr.Text) == "" {
			return fmt.Errorf("fragment %d: empty text", i)
		}
		if fr.Page < 1 {
			return fmt.Errorf("fragment %d: page must be >= 1, got %d", i, fr.Page)
		}
		if fr.BBox.MinX > fr.BBox.MaxX || fr.BBox.MinY > fr.BBox.MaxY {
			return fmt.Errorf("fragment %d: malformed bbox %v", i, fr.BBox.Array())
		}
	}
	return nil
}

func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := sonic.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return nil
}

package reconcile

import (
	"strings"

	"github.com/docfuse/docfuse/internal/geometry"
)

// Kind identifies the content type of a structural or reconciled element.
type Kind string

const (
	KindHeader    Kind = "header"
	KindParagraph Kind = "paragraph"
	KindList      Kind = "list"
	KindFigure    Kind = "figure"
	KindTable     Kind = "table"

	// KindOrphan marks a ground-truth fragment never matched to any
	// structural element by the main pass.
	KindOrphan Kind = "orphan"
)

// IsText reports whether the kind carries body text that is matched against
// ground-truth fragments by the main pass.
func (k Kind) IsText() bool {
	return k == KindHeader || k == KindParagraph || k == KindList
}

// StructuralElement is one unit of the structure stream produced by the
// visual extraction collaborator. Its text is authoritative for wording but
// not for exactness, and its bbox is frequently a placeholder. Inputs are
// never mutated by the engine.
type StructuralElement struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	Text string `json:"text" yaml:"text"`

	// Page and BBox are optional; zero values mean unknown and default to
	// page 1 and an all-zero placeholder box.
	Page int          `json:"page,omitempty" yaml:"page,omitempty"`
	BBox geometry.Box `json:"bbox" yaml:"bbox"`

	// Confidence is the generator's own confidence; zero means unset and
	// defaults to 1.0 for non-text elements.
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// GroundTruthFragment is one exact, positionally-precise text unit from the
// deterministic extraction collaborator. Fragments arrive in reading order
// and each is consumed at most once by the main pass.
type GroundTruthFragment struct {
	Text     string       `json:"text" yaml:"text"`
	Page     int          `json:"page" yaml:"page"`
	BBox     geometry.Box `json:"bbox" yaml:"bbox"`
	FontSize float64      `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	FontName string       `json:"font_name,omitempty" yaml:"font_name,omitempty"`
}

// LayoutRegion is a detected region from the layout collaborator. Regions are
// read-only: they locate candidate areas for specialized downstream parsing
// and are never consumed by the reconciliation pass itself.
type LayoutRegion struct {
	Kind       string       `json:"kind" yaml:"kind"`
	Page       int          `json:"page" yaml:"page"`
	BBox       geometry.Box `json:"bbox" yaml:"bbox"`
	Confidence float64      `json:"confidence" yaml:"confidence"`
}

// Surrounding records the fragments bracketing a figure or table whose bbox
// was inferred from its neighbors. These fragments are kept for traceability
// only and are not marked consumed.
type Surrounding struct {
	Previous []GroundTruthFragment `json:"previous,omitempty" yaml:"previous,omitempty"`
	Next     []GroundTruthFragment `json:"next,omitempty" yaml:"next,omitempty"`
}

// ReconciledElement is the engine's sole output type: structure from the
// structural stream combined with exact text from the fragment stream.
// Elements are created during the single reconciliation pass and mutated only
// by orphan absorption, which extends text, source fragments and bbox.
type ReconciledElement struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	Text string `json:"text" yaml:"text"`

	// SourceFragments lists the fragments merged into this element, in
	// consumption order. Empty for elements kept from structural text.
	SourceFragments []GroundTruthFragment `json:"source_fragments,omitempty" yaml:"source_fragments,omitempty"`

	BBox geometry.Box `json:"bbox" yaml:"bbox"`
	Page int          `json:"page" yaml:"page"`

	// Confidence is the similarity score that admitted this element, or 1.0
	// when no comparison was made.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Hallucination marks an element kept despite weak fragment support,
	// signaling possibly fabricated structure.
	Hallucination bool `json:"hallucination_flag,omitempty" yaml:"hallucination_flag,omitempty"`

	// Surrounding is set only for figures and tables with inferred boxes.
	Surrounding *Surrounding `json:"surrounding_fragments,omitempty" yaml:"surrounding_fragments,omitempty"`
}

// FilterRegions returns the layout regions of the given kind, preserving
// input order. Kind comparison ignores case since detectors label regions
// inconsistently ("Table" vs "table").
func FilterRegions(regions []LayoutRegion, kind string) []LayoutRegion {
	var out []LayoutRegion
	for _, r := range regions {
		if strings.EqualFold(r.Kind, kind) {
			out = append(out, r)
		}
	}
	return out
}

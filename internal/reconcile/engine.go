package reconcile

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/docfuse/docfuse/internal/geometry"
	"github.com/docfuse/docfuse/internal/textsim"
)

// neighborWindow bounds the fragments consulted on each side of the cursor
// when inferring a bounding box for a figure or table.
const neighborWindow = 3

// Engine reconciles structural elements with ground-truth fragments in a
// single linear pass. State is private to each Reconcile call, so one Engine
// can process documents sequentially; a pass itself has no internal
// parallelism and no suspension points.
type Engine struct {
	cfg     Config
	matcher *Matcher
	logger  *slog.Logger
}

// New validates cfg and builds an Engine. An unknown similarity method is
// surfaced here as a configuration error rather than failing per element.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("reconcile config: %w", err)
	}
	scorer, err := textsim.NewScorer(cfg.SimilarityMethod)
	if err != nil {
		return nil, fmt.Errorf("reconcile config: %w", err)
	}
	return &Engine{
		cfg:     cfg,
		matcher: NewMatcher(scorer),
		logger:  slog.Default().With("component", "reconcile"),
	}, nil
}

// Config returns the engine's policy options.
func (e *Engine) Config() Config { return e.cfg }

// Reconcile aligns the structural element stream with the ground-truth
// fragment stream and returns the merged, ordered output. The fragment cursor
// only ever advances, and each fragment index is consumed at most once by the
// main pass; regions are read-only context for downstream specialized parsing
// and are not consumed here.
func (e *Engine) Reconcile(structural []StructuralElement, fragments []GroundTruthFragment, regions []LayoutRegion) []ReconciledElement {
	e.logger.Info("starting reconciliation",
		"structural", len(structural), "fragments", len(fragments), "regions", len(regions))

	out := make([]ReconciledElement, 0, len(structural))
	consumed := make([]bool, len(fragments))
	cursor := 0

	for _, el := range structural {
		switch {
		case el.Kind.IsText():
			cursor = e.reconcileText(el, fragments, cursor, consumed, &out)
		case el.Kind == KindFigure || el.Kind == KindTable:
			if rec, ok := e.inferNonText(el, fragments, cursor); ok {
				out = append(out, rec)
			}
		default:
			e.logger.Debug("skipping element of unknown kind", "kind", el.Kind)
		}
	}

	out = e.resolveOrphans(fragments, consumed, out)

	e.logger.Info("reconciliation complete", "elements", len(out))
	return out
}

// reconcileText applies the three-way threshold policy to one text element
// and returns the new cursor position. Only the accept-as-exact branch
// consumes fragments and advances the cursor.
func (e *Engine) reconcileText(el StructuralElement, fragments []GroundTruthFragment, cursor int, consumed []bool, out *[]ReconciledElement) int {
	match := e.matcher.FindBestRun(el.Text, fragments, cursor)

	switch {
	case len(match.Fragments) > 0 && match.Similarity >= e.cfg.SimilarityThreshold:
		// Ground truth wins: the element's text becomes the exact fragment
		// text, not the structural element's own wording.
		boxes := make([]geometry.Box, len(match.Fragments))
		for i, fr := range match.Fragments {
			boxes[i] = fr.BBox
		}
		*out = append(*out, ReconciledElement{
			Kind:            el.Kind,
			Text:            joinFragmentText(match.Fragments),
			SourceFragments: append([]GroundTruthFragment(nil), match.Fragments...),
			BBox:            geometry.Merge(boxes),
			Page:            match.Fragments[0].Page,
			Confidence:      match.Similarity,
		})
		for i := cursor; i < match.End; i++ {
			consumed[i] = true
		}
		return match.End

	case match.Similarity >= e.cfg.HallucinationThreshold:
		// Weak support: keep the unverified structural text but flag it.
		// No fragments were confidently matched, so nothing is consumed.
		e.logger.Warn("possible hallucination",
			"kind", el.Kind, "similarity", match.Similarity, "text", truncate(el.Text, 50))
		*out = append(*out, ReconciledElement{
			Kind:          el.Kind,
			Text:          el.Text,
			BBox:          el.BBox,
			Page:          defaultPage(el.Page),
			Confidence:    match.Similarity,
			Hallucination: true,
		})
		return cursor

	default:
		e.logger.Debug("discarding weakly supported element",
			"kind", el.Kind, "similarity", match.Similarity, "text", truncate(el.Text, 50))
		return cursor
	}
}

// inferNonText builds a figure or table element whose bbox is the merge of up
// to neighborWindow fragments on each side of the cursor. The neighbors are
// recorded for traceability but never marked consumed. Returns false when
// both neighborhoods are empty, in which case the element is skipped.
func (e *Engine) inferNonText(el StructuralElement, fragments []GroundTruthFragment, cursor int) (ReconciledElement, bool) {
	lo := max(0, cursor-neighborWindow)
	hi := min(len(fragments), cursor+neighborWindow)
	prev := fragments[lo:cursor]
	next := fragments[cursor:hi]
	if len(prev) == 0 && len(next) == 0 {
		return ReconciledElement{}, false
	}

	boxes := make([]geometry.Box, 0, len(prev)+len(next))
	for _, fr := range prev {
		boxes = append(boxes, fr.BBox)
	}
	for _, fr := range next {
		boxes = append(boxes, fr.BBox)
	}

	confidence := el.Confidence
	if confidence == 0 {
		confidence = 1.0
	}
	return ReconciledElement{
		Kind:       el.Kind,
		Text:       el.Text,
		BBox:       geometry.Merge(boxes),
		Page:       defaultPage(el.Page),
		Confidence: confidence,
		Surrounding: &Surrounding{
			Previous: append([]GroundTruthFragment(nil), prev...),
			Next:     append([]GroundTruthFragment(nil), next...),
		},
	}, true
}

func defaultPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// truncate shortens s to at most n bytes for log output, backing up to a
// rune boundary so multi-byte text is never split mid-rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

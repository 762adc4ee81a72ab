package reconcile

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docfuse/docfuse/internal/geometry"
	"github.com/docfuse/docfuse/internal/textsim"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(DefaultConfig())
	require.NoError(t, err)
	return eng
}

func TestNew_InvalidMethod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimilarityMethod = "soundex"
	_, err := New(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, textsim.ErrUnsupportedMethod)
}

func TestReconcile_AcceptExact(t *testing.T) {
	eng := newTestEngine(t)
	fragments := rowFragments(1, "The", "cat", "sat", ".")
	structural := []StructuralElement{
		{Kind: KindParagraph, Text: "The cat sat"},
	}

	out := eng.Reconcile(structural, fragments, nil)

	require.Len(t, out, 1)
	el := out[0]
	assert.Equal(t, KindParagraph, el.Kind)
	assert.False(t, el.Hallucination)
	assert.InDelta(t, 1.0, el.Confidence, 1e-9)
	assert.Equal(t, 1, el.Page)

	// The window search matches "The cat sat" exactly; the trailing "."
	// fragment is then absorbed by orphan resolution, so the final element
	// carries all four fragments and the exact assembled text.
	assert.Equal(t, "The cat sat .", el.Text)
	require.Len(t, el.SourceFragments, 4)

	// bbox covers every source fragment.
	for _, fr := range el.SourceFragments {
		assert.True(t, el.BBox.Contains(fr.BBox))
	}
}

func TestReconcile_GroundTruthTextWins(t *testing.T) {
	eng := newTestEngine(t)
	// Structural text differs slightly from ground truth; on acceptance the
	// exact fragment text replaces the structural wording.
	fragments := rowFragments(1, "reconciliation", "engine", "design")
	structural := []StructuralElement{
		{Kind: KindHeader, Text: "reconciliation engine desing"},
	}

	out := eng.Reconcile(structural, fragments, nil)

	require.Len(t, out, 1)
	assert.Equal(t, "reconciliation engine design", out[0].Text)
	assert.Equal(t, KindHeader, out[0].Kind)
	assert.GreaterOrEqual(t, out[0].Confidence, 0.8)
}

func TestReconcile_HallucinationBand(t *testing.T) {
	eng := newTestEngine(t)
	// "abcdefghij" vs "abcdefxxxx": matching block of 6 over total 20 gives
	// a ratio of exactly 0.6, inside the accept-but-flag band [0.6, 0.8).
	ownBox := geometry.NewBox(100, 200, 300, 220)
	fragments := []GroundTruthFragment{
		frag("abcdefxxxx", 1, geometry.NewBox(0, 0, 10, 10)),
	}
	structural := []StructuralElement{
		{Kind: KindParagraph, Text: "abcdefghij", Page: 2, BBox: ownBox},
		{Kind: KindParagraph, Text: "abcdefxxxx"},
	}

	out := eng.Reconcile(structural, fragments, nil)

	require.Len(t, out, 2)

	flagged := out[0]
	assert.True(t, flagged.Hallucination)
	assert.Equal(t, "abcdefghij", flagged.Text, "unverified structural text is kept")
	assert.Equal(t, ownBox, flagged.BBox, "own bbox is inherited")
	assert.Equal(t, 2, flagged.Page)
	assert.Empty(t, flagged.SourceFragments)
	assert.GreaterOrEqual(t, flagged.Confidence, 0.6)
	assert.Less(t, flagged.Confidence, 0.8)

	// The flagged element consumed nothing, so the cursor stayed put and the
	// second element matched the fragment exactly.
	accepted := out[1]
	assert.False(t, accepted.Hallucination)
	assert.InDelta(t, 1.0, accepted.Confidence, 1e-9)
	require.Len(t, accepted.SourceFragments, 1)
}

func TestReconcile_DiscardBelowFloor(t *testing.T) {
	eng := newTestEngine(t)
	fragments := rowFragments(1, "quantum", "flux", "harmonics")
	structural := []StructuralElement{
		{Kind: KindParagraph, Text: "Utterly unrelated content xyz"},
	}

	out := eng.Reconcile(structural, fragments, nil)

	// The structural element is discarded entirely; only orphan elements
	// built from the unconsumed fragments remain.
	for _, el := range out {
		assert.Equal(t, KindOrphan, el.Kind)
		assert.NotContains(t, el.Text, "Utterly")
	}
}

func TestReconcile_FigureInferredBBox(t *testing.T) {
	eng := newTestEngine(t)
	// Spaced far apart so the unconsumed neighbors end up as standalone
	// orphans instead of being absorbed back into the figure.
	fragments := []GroundTruthFragment{
		frag("caption", 1, geometry.NewBox(0, 0, 10, 10)),
		frag("above", 1, geometry.NewBox(400, 0, 410, 10)),
		frag("below", 1, geometry.NewBox(800, 0, 810, 10)),
		frag("trailing", 1, geometry.NewBox(1200, 0, 1210, 10)),
	}
	structural := []StructuralElement{
		{Kind: KindParagraph, Text: "caption"},
		{Kind: KindFigure, Text: "figures/plot.png", Page: 1, Confidence: 0.75},
	}

	out := eng.Reconcile(structural, fragments, nil)

	var figure *ReconciledElement
	for i := range out {
		if out[i].Kind == KindFigure {
			figure = &out[i]
			break
		}
	}
	require.NotNil(t, figure)

	assert.Equal(t, "figures/plot.png", figure.Text)
	assert.InDelta(t, 0.75, figure.Confidence, 1e-9)
	require.NotNil(t, figure.Surrounding)
	// Cursor sits at 1 after the accepted paragraph: one fragment behind,
	// three ahead.
	assert.Len(t, figure.Surrounding.Previous, 1)
	assert.Len(t, figure.Surrounding.Next, 3)
	assert.Empty(t, figure.SourceFragments, "surrounding fragments are not consumed")

	// Inferred bbox covers every surrounding fragment.
	for _, fr := range figure.Surrounding.Previous {
		assert.True(t, figure.BBox.Contains(fr.BBox))
	}
	for _, fr := range figure.Surrounding.Next {
		assert.True(t, figure.BBox.Contains(fr.BBox))
	}
}

func TestReconcile_TableWithoutNeighborsSkipped(t *testing.T) {
	eng := newTestEngine(t)
	structural := []StructuralElement{
		{Kind: KindTable, Text: "| a | b |"},
	}

	out := eng.Reconcile(structural, nil, nil)

	assert.Empty(t, out)
}

func TestReconcile_CursorAdvancesMonotonically(t *testing.T) {
	eng := newTestEngine(t)
	fragments := rowFragments(1, "first", "sentence", "second", "sentence", "third", "sentence")
	structural := []StructuralElement{
		{Kind: KindParagraph, Text: "first sentence"},
		{Kind: KindParagraph, Text: "second sentence"},
		{Kind: KindParagraph, Text: "third sentence"},
	}

	out := eng.Reconcile(structural, fragments, nil)

	require.Len(t, out, 3)
	// Each accepted element consumes a later run than the previous one.
	assert.Equal(t, "first sentence", out[0].Text)
	assert.Equal(t, "second sentence", out[1].Text)
	assert.Equal(t, "third sentence", out[2].Text)
	for i, el := range out {
		require.Len(t, el.SourceFragments, 2, "element %d", i)
	}
}

func TestReconcile_SkippedPrefixConsumedNotOrphaned(t *testing.T) {
	eng := newTestEngine(t)
	fragments := rowFragments(1, "stray", "header", "text")
	structural := []StructuralElement{
		{Kind: KindHeader, Text: "header text"},
	}

	out := eng.Reconcile(structural, fragments, nil)

	// The best window starts one past the cursor; everything up to its end
	// is consumed, so "stray" is neither carried nor resurrected as an
	// orphan.
	require.Len(t, out, 1)
	assert.Equal(t, "header text", out[0].Text)
	require.Len(t, out[0].SourceFragments, 2)
	assert.Equal(t, "header", out[0].SourceFragments[0].Text)
}

func TestReconcile_EmptyInputs(t *testing.T) {
	eng := newTestEngine(t)
	assert.Empty(t, eng.Reconcile(nil, nil, nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 50))

	long := strings.Repeat("a", 60)
	assert.Equal(t, strings.Repeat("a", 50)+"...", truncate(long, 50))

	// Multi-byte text is cut on a rune boundary, never mid-rune.
	multi := strings.Repeat("é", 40)
	got := truncate(multi, 49)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 24)+"...", got)
}

func TestFilterRegions(t *testing.T) {
	regions := []LayoutRegion{
		{Kind: "table", Page: 1, Confidence: 0.9},
		{Kind: "Figure", Page: 1, Confidence: 0.8},
		{Kind: "Table", Page: 2, Confidence: 0.7},
	}

	tables := FilterRegions(regions, "table")
	require.Len(t, tables, 2)
	assert.Equal(t, 1, tables[0].Page)
	assert.Equal(t, 2, tables[1].Page)

	assert.Empty(t, FilterRegions(regions, "equation"))
}

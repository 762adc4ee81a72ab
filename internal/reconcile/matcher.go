package reconcile

import (
	"strings"

	"github.com/docfuse/docfuse/internal/textsim"
)

// maxWindow caps how many consecutive fragments can back one structural
// element. Keeps the exhaustive search bounded and predictable per element.
const maxWindow = 10

// Match is the outcome of a best-run search over the fragment sequence.
type Match struct {
	// Fragments is the best-scoring contiguous run, empty when nothing
	// scored above zero.
	Fragments []GroundTruthFragment

	// End is the index one past the matched run, or the start cursor when
	// nothing matched.
	End int

	// Similarity is the best score found across all windows.
	Similarity float64
}

// Matcher aligns one structural element's text against a contiguous run of
// ground-truth fragments.
type Matcher struct {
	scorer *textsim.Scorer
}

// NewMatcher builds a Matcher around a configured scorer.
func NewMatcher(scorer *textsim.Scorer) *Matcher {
	return &Matcher{scorer: scorer}
}

// FindBestRun scans window sizes 1..min(maxWindow, remaining) and, for each
// size, every starting offset from start to the end of the sequence, scoring
// the space-joined window text against target. The single best window across
// the whole scan wins; only strictly greater scores replace the current best,
// so on ties the first window found (smallest size, then earliest offset)
// is kept.
func (m *Matcher) FindBestRun(target string, fragments []GroundTruthFragment, start int) Match {
	best := Match{End: start}
	limit := min(maxWindow, len(fragments)-start)
	for w := 1; w <= limit; w++ {
		for i := start; i+w <= len(fragments); i++ {
			window := fragments[i : i+w]
			sim := m.scorer.Score(target, joinFragmentText(window))
			if sim > best.Similarity {
				best = Match{Fragments: window, End: i + w, Similarity: sim}
			}
		}
	}
	return best
}

// joinFragmentText concatenates fragment texts with single spaces, the same
// separator used when assembling accepted element text.
func joinFragmentText(fragments []GroundTruthFragment) string {
	if len(fragments) == 1 {
		return fragments[0].Text
	}
	parts := make([]string, len(fragments))
	for i, fr := range fragments {
		parts[i] = fr.Text
	}
	return strings.Join(parts, " ")
}

package reconcile

import (
	"math"
	"strings"

	"github.com/docfuse/docfuse/internal/geometry"
)

// resolveOrphans handles every fragment the main pass never consumed, in
// original fragment order. Each non-blank orphan is either absorbed into the
// nearest same-page element within the distance budget (an in-place update of
// an already-emitted element, the only post-creation mutation in the model)
// or appended as a standalone orphan element. Appended orphans join the
// candidate set immediately, so a later orphan may be absorbed into an
// element created by an earlier one.
func (e *Engine) resolveOrphans(fragments []GroundTruthFragment, consumed []bool, out []ReconciledElement) []ReconciledElement {
	absorbed, created := 0, 0
	for i, fr := range fragments {
		if consumed[i] || strings.TrimSpace(fr.Text) == "" {
			continue
		}

		if idx := nearestElementIndex(fr, out); idx >= 0 &&
			geometry.Distance(fr.BBox, out[idx].BBox) <= e.cfg.OrphanMaxDistance {
			el := &out[idx]
			el.Text += " " + fr.Text
			el.SourceFragments = append(el.SourceFragments, fr)
			el.BBox = geometry.Merge([]geometry.Box{el.BBox, fr.BBox})
			absorbed++
			continue
		}

		out = append(out, ReconciledElement{
			Kind:            KindOrphan,
			Text:            fr.Text,
			SourceFragments: []GroundTruthFragment{fr},
			BBox:            fr.BBox,
			Page:            fr.Page,
			Confidence:      1.0,
		})
		created++
	}
	if absorbed > 0 || created > 0 {
		e.logger.Debug("orphan resolution", "absorbed", absorbed, "created", created)
	}
	return out
}

// nearestElementIndex returns the index of the closest element on the
// fragment's page by center distance, or -1 when no element shares the page.
// Elements on other pages are ineligible regardless of distance; ties keep
// the earliest element scanned.
func nearestElementIndex(fr GroundTruthFragment, out []ReconciledElement) int {
	best := -1
	bestDist := math.Inf(1)
	for i := range out {
		if out[i].Page != fr.Page {
			continue
		}
		if d := geometry.Distance(fr.BBox, out[i].BBox); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

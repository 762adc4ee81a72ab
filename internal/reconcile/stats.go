package reconcile

// Stats summarizes a reconciliation run for downstream reporting. It is a
// plain aggregate over the output sequence, not part of the algorithm.
type Stats struct {
	TotalElements   int          `json:"total_elements" yaml:"total_elements"`
	TextElements    int          `json:"text_elements" yaml:"text_elements"`
	NonTextElements int          `json:"non_text_elements" yaml:"non_text_elements"`
	OrphanElements  int          `json:"orphan_elements" yaml:"orphan_elements"`
	ByKind          map[Kind]int `json:"by_kind" yaml:"by_kind"`
	Hallucinations  int          `json:"hallucination_warnings" yaml:"hallucination_warnings"`
	MeanConfidence  float64      `json:"average_confidence" yaml:"average_confidence"`
}

// Summarize computes aggregate statistics over reconciled output.
func Summarize(elements []ReconciledElement) Stats {
	stats := Stats{
		TotalElements: len(elements),
		ByKind:        make(map[Kind]int),
	}
	var confidenceSum float64
	for _, el := range elements {
		stats.ByKind[el.Kind]++
		switch {
		case el.Kind.IsText():
			stats.TextElements++
		case el.Kind == KindOrphan:
			stats.OrphanElements++
		default:
			stats.NonTextElements++
		}
		if el.Hallucination {
			stats.Hallucinations++
		}
		confidenceSum += el.Confidence
	}
	if len(elements) > 0 {
		stats.MeanConfidence = confidenceSum / float64(len(elements))
	}
	return stats
}

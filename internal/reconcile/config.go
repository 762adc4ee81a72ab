package reconcile

import (
	"fmt"

	"github.com/docfuse/docfuse/internal/textsim"
)

// Config holds the reconciliation policy options.
type Config struct {
	// SimilarityMethod selects the textsim algorithm used by the matcher.
	SimilarityMethod textsim.Method

	// SimilarityThreshold is the accept-as-exact cutoff.
	SimilarityThreshold float64

	// HallucinationThreshold is the accept-but-flag cutoff. Elements scoring
	// below it are discarded.
	HallucinationThreshold float64

	// DiscardThreshold is carried from configuration for reporting purposes
	// but never consulted by the pass: everything below
	// HallucinationThreshold is already discarded.
	DiscardThreshold float64

	// OrphanMaxDistance is the spatial budget, in page coordinate units, for
	// absorbing an unconsumed fragment into a nearby element.
	OrphanMaxDistance float64
}

// DefaultConfig returns the default reconciliation policy.
func DefaultConfig() Config {
	return Config{
		SimilarityMethod:       textsim.MethodLevenshtein,
		SimilarityThreshold:    0.8,
		HallucinationThreshold: 0.6,
		DiscardThreshold:       0.4,
		OrphanMaxDistance:      100,
	}
}

// Validate checks the similarity method and threshold ranges.
func (c Config) Validate() error {
	if _, err := textsim.NewScorer(c.SimilarityMethod); err != nil {
		return err
	}
	for name, v := range map[string]float64{
		"similarity threshold":    c.SimilarityThreshold,
		"hallucination threshold": c.HallucinationThreshold,
		"discard threshold":       c.DiscardThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %g", name, v)
		}
	}
	if c.HallucinationThreshold > c.SimilarityThreshold {
		return fmt.Errorf("hallucination threshold %g exceeds similarity threshold %g",
			c.HallucinationThreshold, c.SimilarityThreshold)
	}
	if c.OrphanMaxDistance < 0 {
		return fmt.Errorf("orphan max distance must be >= 0, got %g", c.OrphanMaxDistance)
	}
	return nil
}

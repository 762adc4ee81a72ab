package textsim

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/bbalet/stopwords"
	"github.com/james-bowman/nlp"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"golang.org/x/text/cases"
	"gonum.org/v1/gonum/mat"
)

// Method identifies a similarity algorithm.
type Method string

const (
	// MethodLevenshtein is a normalized edit ratio after case folding,
	// not a raw Levenshtein distance. Identical strings score 1.0.
	MethodLevenshtein Method = "levenshtein"

	// MethodFuzzy is a best-matching-substring partial ratio. It rewards a
	// short string contained in a longer superstring.
	MethodFuzzy Method = "fuzzy"

	// MethodCosine vectorizes both strings with TF-IDF over the two-document
	// corpus, filters English stopwords, and takes the cosine of the vectors.
	MethodCosine Method = "cosine"
)

// ErrUnsupportedMethod is returned when a scorer is constructed with an
// unknown method name. This is a fatal configuration error.
var ErrUnsupportedMethod = errors.New("unsupported similarity method")

// Scorer computes text similarity in [0, 1] with a fixed method.
// It is not safe for concurrent use; a reconciliation pass is single-threaded.
type Scorer struct {
	method Method
	folder cases.Caser
}

// NewScorer validates the method name and builds a Scorer. Validation happens
// here once so an unknown method fails fast instead of per comparison.
func NewScorer(method Method) (*Scorer, error) {
	switch method {
	case MethodLevenshtein, MethodFuzzy, MethodCosine:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
	return &Scorer{method: method, folder: cases.Fold()}, nil
}

// Method returns the configured method name.
func (s *Scorer) Method() Method { return s.method }

// Score returns the similarity of a and b in [0, 1]. Empty input on either
// side scores 0.0 rather than raising an error.
func (s *Scorer) Score(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	switch s.method {
	case MethodLevenshtein:
		return float64(fuzzy.Ratio(s.folder.String(a), s.folder.String(b))) / 100.0
	case MethodFuzzy:
		return float64(fuzzy.PartialRatio(s.folder.String(a), s.folder.String(b))) / 100.0
	case MethodCosine:
		return s.cosine(a, b)
	}
	return 0.0
}

// cosine computes TF-IDF cosine similarity over the corpus {a, b}. Any
// vectorization failure, including both inputs reducing to pure stopwords,
// degrades to 0.0.
func (s *Scorer) cosine(a, b string) float64 {
	da := strings.TrimSpace(stopwords.CleanString(a, "en", false))
	db := strings.TrimSpace(stopwords.CleanString(b, "en", false))
	if da == "" || db == "" {
		return 0.0
	}

	counts, err := nlp.NewCountVectoriser().FitTransform(da, db)
	if err != nil {
		return 0.0
	}

	sim := cosineOf(tfidfColumns(counts))
	if math.IsNaN(sim) || sim < 0 {
		return 0.0
	}
	if sim > 1 {
		return 1.0
	}
	return sim
}

// tfidfColumns weights the term-document count matrix with smooth IDF,
// ln((1+n)/(1+df)) + 1 for n = 2 documents. The +1 keeps terms present in
// both documents contributing; an unsmoothed IDF would weight every shared
// term of a two-document corpus to exactly zero and make identical inputs
// incomparable.
func tfidfColumns(counts mat.Matrix) (va, vb []float64) {
	terms, _ := counts.Dims()
	va = make([]float64, terms)
	vb = make([]float64, terms)
	for t := 0; t < terms; t++ {
		ca, cb := counts.At(t, 0), counts.At(t, 1)
		df := 1.0
		if ca > 0 {
			df++
		}
		if cb > 0 {
			df++
		}
		idf := math.Log(3.0/df) + 1.0
		va[t] = ca * idf
		vb[t] = cb * idf
	}
	return va, vb
}

func cosineOf(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

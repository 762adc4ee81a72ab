package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/docfuse/docfuse/internal/reconcile"
)

// CrossCheckPDF verifies that the fragment stream is plausible for the given
// source PDF: every fragment page must exist in the document. This catches
// mismatched input pairs before a run silently produces orphans for every
// fragment.
func CrossCheckPDF(path string, fragments []reconcile.GroundTruthFragment) error {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	count, err := api.PageCountFile(path)
	if err != nil {
		return fmt.Errorf("reading page count of %s: %w", path, err)
	}

	for i, fr := range fragments {
		if fr.Page > count {
			return fmt.Errorf("fragment %d: page %d exceeds document page count %d",
				i, fr.Page, count)
		}
	}
	return nil
}

// Package output renders reconciled documents into their final delivery
// formats: markdown, JSON, plain text, and a minimal TEI XML.
package output

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/docfuse/docfuse/internal/reconcile"
)

// Format names a supported output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatTEI      Format = "tei"
)

// ErrUnsupportedFormat is returned when a generator is constructed with an
// unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Document is one reconciled document ready for rendering.
type Document struct {
	Name     string                        `json:"name,omitempty"`
	RunID    string                        `json:"run_id,omitempty"`
	Elements []reconcile.ReconciledElement `json:"elements"`
	Stats    reconcile.Stats               `json:"stats"`
}

// Generator renders documents in one fixed format.
type Generator struct {
	format          Format
	includeMetadata bool
}

// New validates the format eagerly and returns a generator. When
// includeMetadata is set, JSON output carries run metadata and stats, and
// text formats carry a header comment.
func New(format Format, includeMetadata bool) (*Generator, error) {
	switch format {
	case FormatMarkdown, FormatJSON, FormatText, FormatTEI:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &Generator{format: format, includeMetadata: includeMetadata}, nil
}

// Format returns the generator's output format.
func (g *Generator) Format() Format { return g.format }

// Render produces the document in the generator's format.
func (g *Generator) Render(doc Document) ([]byte, error) {
	switch g.format {
	case FormatMarkdown:
		return g.renderMarkdown(doc), nil
	case FormatJSON:
		return g.renderJSON(doc)
	case FormatText:
		return g.renderText(doc), nil
	case FormatTEI:
		return g.renderTEI(doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, g.format)
	}
}

// Save renders the document and writes it to path, creating parent
// directories as needed.
func (g *Generator) Save(doc Document, path string) error {
	data, err := g.Render(doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Extension returns the conventional file extension for the format, without
// the leading dot.
func (g *Generator) Extension() string {
	switch g.format {
	case FormatMarkdown:
		return "md"
	case FormatJSON:
		return "json"
	case FormatTEI:
		return "xml"
	default:
		return "txt"
	}
}

func (g *Generator) renderMarkdown(doc Document) []byte {
	var sb strings.Builder
	if g.includeMetadata && doc.Name != "" {
		fmt.Fprintf(&sb, "<!-- %s -->\n\n", doc.Name)
	}
	for _, el := range doc.Elements {
		switch el.Kind {
		case reconcile.KindHeader:
			sb.WriteString(strings.Repeat("#", headerLevel(el)))
			sb.WriteByte(' ')
			sb.WriteString(el.Text)
		case reconcile.KindList:
			sb.WriteString("- ")
			sb.WriteString(el.Text)
		case reconcile.KindFigure:
			fmt.Fprintf(&sb, "![Figure](%s)", el.Text)
		default:
			sb.WriteString(el.Text)
		}
		sb.WriteString("\n\n")
	}
	return []byte(sb.String())
}

// headerLevel maps the dominant font size of a header's source fragments to
// a markdown heading level. Headers with no verified fragments default to
// level 2.
func headerLevel(el reconcile.ReconciledElement) int {
	if len(el.SourceFragments) == 0 {
		return 2
	}
	switch size := el.SourceFragments[0].FontSize; {
	case size > 16:
		return 1
	case size > 14:
		return 2
	case size > 12:
		return 3
	default:
		return 4
	}
}

func (g *Generator) renderJSON(doc Document) ([]byte, error) {
	var v interface{} = doc
	if !g.includeMetadata {
		v = struct {
			Elements []reconcile.ReconciledElement `json:"elements"`
		}{Elements: doc.Elements}
	}
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}
	return append(data, '\n'), nil
}

func (g *Generator) renderText(doc Document) []byte {
	lines := make([]string, 0, len(doc.Elements))
	for _, el := range doc.Elements {
		if t := strings.TrimSpace(el.Text); t != "" {
			lines = append(lines, t)
		}
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// teiDocument is the minimal TEI body: one div per element, typed by kind
// and numbered by page.
type teiDocument struct {
	XMLName xml.Name `xml:"TEI"`
	Title   string   `xml:"teiHeader>fileDesc>titleStmt>title,omitempty"`
	Date    string   `xml:"teiHeader>fileDesc>publicationStmt>date,omitempty"`
	Divs    []teiDiv `xml:"text>body>div"`
}

type teiDiv struct {
	Type string `xml:"type,attr"`
	Page int    `xml:"n,attr"`
	Text string `xml:",chardata"`
}

func (g *Generator) renderTEI(doc Document) ([]byte, error) {
	tei := teiDocument{Divs: make([]teiDiv, 0, len(doc.Elements))}
	if g.includeMetadata {
		tei.Title = doc.Name
		tei.Date = time.Now().UTC().Format(time.RFC3339)
	}
	for _, el := range doc.Elements {
		tei.Divs = append(tei.Divs, teiDiv{
			Type: string(el.Kind),
			Page: el.Page,
			Text: el.Text,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(tei); err != nil {
		return nil, fmt.Errorf("encoding tei: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

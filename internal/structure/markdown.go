// Package structure turns markdown produced by an upstream structure
// generator into the element stream the reconciliation pass consumes. The
// markdown is treated as approximate: element text is carried verbatim, but
// positions are unknown and confidence reflects how reliably the upstream
// model emits each construct.
package structure

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/docfuse/docfuse/internal/reconcile"
)

// Upstream models emit headings most reliably, then prose, then lists, with
// tables the most error-prone construct.
const (
	headerConfidence    = 0.9
	paragraphConfidence = 0.8
	listConfidence      = 0.8
	tableConfidence     = 0.7
)

// ParseMarkdown extracts structural elements from markdown source. Elements
// are returned in document order with the given page and no bounding box; the
// reconciliation pass recovers geometry from ground truth.
func ParseMarkdown(source []byte, page int) []reconcile.StructuralElement {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(source))

	var elements []reconcile.StructuralElement
	walkBlocks(doc, source, page, &elements)
	return elements
}

func walkBlocks(node ast.Node, source []byte, page int, out *[]reconcile.StructuralElement) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			appendElement(out, reconcile.KindHeader, nodeText(n, source), page, headerConfidence)
		case *ast.Paragraph:
			if dest, ok := soleImageDestination(n, source); ok {
				appendElement(out, reconcile.KindFigure, dest, page, paragraphConfidence)
				continue
			}
			appendElement(out, reconcile.KindParagraph, nodeText(n, source), page, paragraphConfidence)
		case *ast.List:
			walkBlocks(n, source, page, out)
		case *ast.ListItem:
			appendElement(out, reconcile.KindList, nodeText(n, source), page, listConfidence)
		case *east.Table:
			appendElement(out, reconcile.KindTable, tableText(n, source), page, tableConfidence)
		case *ast.Blockquote:
			walkBlocks(n, source, page, out)
		}
	}
}

func appendElement(out *[]reconcile.StructuralElement, kind reconcile.Kind, text string, page int, confidence float64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	*out = append(*out, reconcile.StructuralElement{
		Kind:       kind,
		Text:       text,
		Page:       page,
		Confidence: confidence,
	})
}

// soleImageDestination reports whether the paragraph consists of a single
// image, in which case the image destination stands in as the figure text.
func soleImageDestination(n *ast.Paragraph, source []byte) (string, bool) {
	img, ok := n.FirstChild().(*ast.Image)
	if !ok || n.ChildCount() != 1 {
		return "", false
	}
	dest := strings.TrimSpace(string(img.Destination))
	if dest == "" {
		dest = nodeText(img, source)
	}
	return dest, dest != ""
}

// nodeText flattens a node's inline content into plain text, inserting a
// space at line breaks and block boundaries and collapsing runs of
// whitespace.
func nodeText(node ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				sb.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

// tableText joins every cell of the table, rows separated by spaces, so the
// matcher can still align the table against ground-truth fragments.
func tableText(table *east.Table, source []byte) string {
	var cells []string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			if text := nodeText(cell, source); text != "" {
				cells = append(cells, text)
			}
		}
	}
	return strings.Join(cells, " ")
}

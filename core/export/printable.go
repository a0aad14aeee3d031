package export

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gaurav-prasanna/receita/core/document"
)

// PrintRootID is the element id of the print root in PrintHTML output.
// Rasterizers capture this element.
const PrintRootID = "receita-print"

// EmptyFieldText stands in for an empty field on the printed page.
const EmptyFieldText = "0"

// Print geometry: A4 portrait.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
)

const rootStyle = "color: black; border: none; height: 297mm; width: 210mm;"

const pageHead = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Print PDF</title>
<style>html, body { margin: 0; padding: 0; background: white; } #` + PrintRootID + ` { font-family: monospace; font-size: 14px; box-sizing: border-box; }</style>
</head><body>`

const pageTail = `</body></html>`

// PrintClone returns a copy of n laid out for print: every field is replaced
// by a static span holding its value, or EmptyFieldText when empty, sized to
// the field's rendered width. n itself is left untouched.
func PrintClone(n *document.Node) *document.Node {
	c := n.Clone()
	replaceFields(c)
	return c
}

func replaceFields(n *document.Node) {
	if n.Kind == document.Field {
		v := n.Value
		if v == "" {
			v = EmptyFieldText
		}
		*n = document.Node{
			Kind:     document.Element,
			Tag:      "span",
			Width:    n.Width,
			Children: []*document.Node{document.T(v)},
		}
		return
	}
	for _, c := range n.Children {
		replaceFields(c)
	}
}

// PrintHTML renders the print clone of n as a standalone HTML page whose
// root element has id PrintRootID, no border and A4 dimensions.
func PrintHTML(n *document.Node) (string, error) {
	root, err := PrintFragment(n)
	if err != nil {
		return "", err
	}
	return pageHead + root + pageTail, nil
}

// PrintFragment renders only the print root element of PrintHTML.
func PrintFragment(n *document.Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("rendering print page: nil document")
	}

	root := toHTML(PrintClone(n))
	if root.Type != html.ElementNode || root.Data != "div" {
		wrap := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
		wrap.AppendChild(root)
		root = wrap
	}
	setAttr(root, "id", PrintRootID)
	setAttr(root, "style", rootStyle)

	var b strings.Builder
	if err := html.Render(&b, root); err != nil {
		return "", fmt.Errorf("rendering print page: %w", err)
	}
	return b.String(), nil
}

func toHTML(n *document.Node) *html.Node {
	if n.Kind == document.Text {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}

	tag := n.Tag
	switch {
	case tag == "" || tag == "body" || tag == "html":
		tag = "div"
	case n.Kind == document.Field:
		// Only reachable for trees that skipped PrintClone.
		tag = "span"
	}

	el := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	if n.Tag == "span" && n.Width > 0 {
		setAttr(el, "style", "min-width: "+strconv.FormatFloat(n.Width, 'f', -1, 64)+
			"px; display: inline-block; color: black; border: none;")
	}
	for _, c := range n.Children {
		el.AppendChild(toHTML(c))
	}
	return el
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

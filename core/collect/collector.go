// Package collect linearizes a document tree into a text transcript.
// The transcript is what gets written to the clipboard or embedded in a
// text export: field values in document order, list numbering restored and
// headings separated by a blank line.
package collect

import (
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/receita/core/document"
)

// Collect visits root and its descendants in document order and returns the
// transcript. When uppercase is set the whole transcript is upper-cased once
// after traversal. The tree is never modified.
func Collect(root *document.Node, uppercase bool) string {
	if root == nil {
		return ""
	}

	var b strings.Builder
	visit(&b, root, nil)

	out := b.String()
	if uppercase {
		out = strings.ToUpper(out)
	}
	// One pass only: a run of three spaces leaves two behind.
	return strings.ReplaceAll(out, "  ", " ")
}

func visit(b *strings.Builder, n, parent *document.Node) {
	switch n.Kind {
	case document.Field:
		b.WriteString(n.Value)
		b.WriteByte('\n')
		return
	case document.Control:
		return
	case document.Text:
		if n.Text != "" {
			b.WriteString(n.Text)
			b.WriteByte(' ')
		}
		return
	}

	if n.Kind == document.ListItem && parent != nil && parent.Kind == document.OrderedList {
		b.WriteString(strconv.Itoa(itemIndex(parent, n)))
		b.WriteString(". ")
	}

	for _, c := range n.Children {
		visit(b, c, n)
	}

	if n.Kind != document.Container && n.Kind != document.OrderedList {
		b.WriteByte('\n')
	}
	if n.Kind == document.Heading {
		b.WriteByte('\n')
	}
}

// itemIndex is the 1-based position of item among the element children of
// list. Text children do not count, as with a DOM element's children.
func itemIndex(list, item *document.Node) int {
	i := 0
	for _, c := range list.Children {
		if c.Kind == document.Text {
			continue
		}
		i++
		if c == item {
			return i
		}
	}
	return i
}

// Lines splits a transcript into its ordered segments. The empty segment
// after a final line break is dropped.
func Lines(transcript string) []string {
	if transcript == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(transcript, "\n"), "\n")
}

// Clipboard returns the transcript as it is written to the clipboard.
func Clipboard(transcript string) string {
	return strings.TrimSpace(transcript)
}

// Package normalize converts the printable HTML of a document into
// Markdown, the format of the .md export artifact.
//
// Its input is the print clone built by the export package: fields are
// already replaced by spans holding their values and controls are removed,
// so route headings ("Uso Oral") become ## headings and the medicine list
// keeps its 1. 2. 3. numbering. The result is what a pharmacist system or a
// patient record can ingest without a PDF reader.
package normalize

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
type MarkdownNormalizer struct{}

// New creates a MarkdownNormalizer.
func New() *MarkdownNormalizer {
	return &MarkdownNormalizer{}
}

// Normalize converts an HTML page or fragment into Markdown. Surrounding
// blank lines are dropped and the result always ends in exactly one newline,
// so an empty prescription yields "\n".
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown) + "\n", nil
}

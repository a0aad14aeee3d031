package document

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNoMatch is returned when the snapshot selector matches no element.
var ErrNoMatch = errors.New("selector matched no element")

// droppedTags never contribute to a rendered document.
var droppedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"head": true, "meta": true, "link": true, "title": true,
}

// charWidth approximates one monospace character in CSS pixels, used to
// size fields that only carry a size attribute.
const charWidth = 8.0

var styleWidth = regexp.MustCompile(`(?i)(?:^|;)\s*(?:min-)?width\s*:\s*([0-9.]+)px`)

// FromHTML parses rendered HTML and snapshots the first element matching
// selector into a Node tree. An empty selector snapshots <body>.
func FromHTML(r io.Reader, selector string) (*Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	if selector == "" {
		selector = "body"
	}

	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, selector)
	}

	root := snapshot(sel.Get(0))
	if root == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, selector)
	}
	return root, nil
}

// FromHTMLString is FromHTML over a string.
func FromHTMLString(s, selector string) (*Node, error) {
	return FromHTML(strings.NewReader(s), selector)
}

func snapshot(n *html.Node) *Node {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return T(n.Data)
	case html.ElementNode:
	default:
		return nil
	}

	tag := strings.ToLower(n.Data)
	if droppedTags[tag] {
		return nil
	}

	switch tag {
	case "input", "textarea", "select":
		return &Node{Kind: Field, Tag: tag, Value: fieldValue(n, tag), Width: fieldWidth(n)}
	case "button":
		return &Node{Kind: Control, Tag: tag, Children: snapshotChildren(n)}
	}

	out := &Node{Kind: elementKind(tag), Tag: tag}
	out.Children = snapshotChildren(n)
	return out
}

func snapshotChildren(n *html.Node) []*Node {
	var children []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s := snapshot(c); s != nil {
			children = append(children, s)
		}
	}
	return children
}

func elementKind(tag string) Kind {
	switch tag {
	case "div", "body", "html":
		return Container
	case "ol":
		return OrderedList
	case "li":
		return ListItem
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return Heading
	}
	return Element
}

func fieldValue(n *html.Node, tag string) string {
	switch tag {
	case "textarea":
		return textContent(n)
	case "select":
		var first, selected *html.Node
		var find func(*html.Node)
		find = func(x *html.Node) {
			if x.Type == html.ElementNode && x.Data == "option" {
				if first == nil {
					first = x
				}
				if _, ok := attr(x, "selected"); ok && selected == nil {
					selected = x
				}
			}
			for c := x.FirstChild; c != nil; c = c.NextSibling {
				find(c)
			}
		}
		find(n)
		if selected == nil {
			selected = first
		}
		if selected == nil {
			return ""
		}
		if v, ok := attr(selected, "value"); ok {
			return v
		}
		return textContent(selected)
	}

	v, ok := attr(n, "value")
	if !ok {
		t, _ := attr(n, "type")
		if t = strings.ToLower(t); t == "checkbox" || t == "radio" {
			return "on"
		}
	}
	return v
}

func fieldWidth(n *html.Node) float64 {
	if v, ok := attr(n, "data-width"); ok {
		if w, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64); err == nil {
			return w
		}
	}
	if v, ok := attr(n, "style"); ok {
		if m := styleWidth.FindStringSubmatch(v); m != nil {
			if w, err := strconv.ParseFloat(m[1], 64); err == nil {
				return w
			}
		}
	}
	if v, ok := attr(n, "size"); ok {
		if s, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && s > 0 {
			return float64(s) * charWidth
		}
	}
	return 0
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(x *html.Node) {
		if x.Type == html.TextNode {
			b.WriteString(x.Data)
		}
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Package document defines the Document Node value type.
// A Node tree is a snapshot of a rendered, editable document: the
// presentation layer (or FromHTML) builds it once per render pass and the
// collector and exporter only read it.
package document

import "strings"

// Kind tags the variant of a Node.
type Kind int

const (
	// Container is a generic grouping element (div, or a body or html root).
	Container Kind = iota
	// Element is any other structural element (p, span, ul, label, ...).
	Element
	// OrderedList numbers its ListItem children.
	OrderedList
	// ListItem is an entry of a list.
	ListItem
	// Field is an editable field holding a current value.
	Field
	// Heading is a section heading.
	Heading
	// Text is a leaf of literal text.
	Text
	// Control is a button or other control; never part of a transcript.
	Control
)

var kindNames = map[Kind]string{
	Container:   "container",
	Element:     "element",
	OrderedList: "ordered-list",
	ListItem:    "list-item",
	Field:       "field",
	Heading:     "heading",
	Text:        "text",
	Control:     "control",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Node is one element of a document tree.
type Node struct {
	Kind Kind
	// Tag is the source element name ("div", "h2", "input", ...).
	// Empty for text nodes.
	Tag string
	// Value is the current value of a Field.
	Value string
	// Text is the literal content of a Text node.
	Text string
	// Width is the rendered width of a Field in CSS pixels, 0 if unknown.
	Width float64
	// Children are owned by this node, in document order.
	Children []*Node
}

// Div returns a generic container.
func Div(children ...*Node) *Node {
	return &Node{Kind: Container, Tag: "div", Children: children}
}

// El returns a structural element with the given tag.
func El(tag string, children ...*Node) *Node {
	return &Node{Kind: Element, Tag: strings.ToLower(tag), Children: children}
}

// OL returns an ordered list.
func OL(items ...*Node) *Node {
	return &Node{Kind: OrderedList, Tag: "ol", Children: items}
}

// LI returns a list item.
func LI(children ...*Node) *Node {
	return &Node{Kind: ListItem, Tag: "li", Children: children}
}

// Input returns an editable field holding value.
func Input(value string) *Node {
	return &Node{Kind: Field, Tag: "input", Value: value}
}

// H returns a heading of the given level (1-6) with text content.
func H(level int, text string) *Node {
	if level < 1 || level > 6 {
		level = 2
	}
	return &Node{
		Kind:     Heading,
		Tag:      "h" + string(rune('0'+level)),
		Children: []*Node{T(text)},
	}
}

// T returns a text leaf.
func T(text string) *Node {
	return &Node{Kind: Text, Text: text}
}

// Button returns a control with a text label.
func Button(label string) *Node {
	n := &Node{Kind: Control, Tag: "button"}
	if label != "" {
		n.Children = []*Node{T(label)}
	}
	return n
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Fields returns every Field in the subtree, in document order.
func (n *Node) Fields() []*Node {
	var out []*Node
	n.Walk(func(x *Node) bool {
		if x.Kind == Field {
			out = append(out, x)
			return false
		}
		return true
	})
	return out
}

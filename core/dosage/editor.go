// Package dosage implements token-aware deletion for free-text dosage fields.
// A dosage token such as "1/1" or "Y/Y" is one unit: a Backspace right after
// it or a Delete right before it removes the whole token.
package dosage

import (
	"regexp"
	"unicode/utf8"
)

// Placeholder is the symbol standing in for a number not yet filled in.
const Placeholder = "Y"

var tokenPattern = regexp.MustCompile(`(\d+|` + Placeholder + `)/(\d+|` + Placeholder + `)`)

// Key is a deletion keystroke.
type Key int

const (
	Backspace Key = iota
	Delete
)

func (k Key) String() string {
	if k == Delete {
		return "Delete"
	}
	return "Backspace"
}

// ParseKey maps a key name to a Key. It reports false for anything that is
// not a deletion key.
func ParseKey(name string) (Key, bool) {
	switch name {
	case "Backspace", "backspace":
		return Backspace, true
	case "Delete", "delete", "Del", "del":
		return Delete, true
	}
	return 0, false
}

// Span is a token position in rune offsets, End exclusive.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Edit is the field state after a keystroke.
type Edit struct {
	Value  string `json:"value"`
	Cursor int    `json:"cursor"`
	// Atomic is set when a whole token was removed and the default
	// single-character deletion was prevented.
	Atomic bool `json:"atomic"`
}

// Tokens returns every dosage token in value, left to right.
func Tokens(value string) []Span {
	matches := tokenPattern.FindAllStringIndex(value, -1)
	spans := make([]Span, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, Span{
			Start: utf8.RuneCountInString(value[:m[0]]),
			End:   utf8.RuneCountInString(value[:m[1]]),
			Text:  value[m[0]:m[1]],
		})
	}
	return spans
}

// Intercept decides whether a deletion keystroke at cursor hits a token
// boundary. Tokens are scanned left to right and the first one whose end
// (Backspace) or start (Delete) equals cursor is removed; the cursor moves to
// where the token started. It reports false when default deletion applies.
func Intercept(value string, cursor int, key Key) (Edit, bool) {
	for _, m := range tokenPattern.FindAllStringIndex(value, -1) {
		start := utf8.RuneCountInString(value[:m[0]])
		end := start + utf8.RuneCountInString(value[m[0]:m[1]])

		if (key == Backspace && cursor == end) || (key == Delete && cursor == start) {
			return Edit{
				Value:  value[:m[0]] + value[m[1]:],
				Cursor: start,
				Atomic: true,
			}, true
		}
	}
	return Edit{Value: value, Cursor: cursor}, false
}

// Apply performs a full deletion keystroke: the atomic token removal when
// Intercept claims it, otherwise the default single-character deletion.
// Cursors outside the value are clamped.
func Apply(value string, cursor int, key Key) Edit {
	runes := []rune(value)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}

	if e, ok := Intercept(value, cursor, key); ok {
		return e
	}

	switch key {
	case Backspace:
		if cursor == 0 {
			return Edit{Value: value, Cursor: 0}
		}
		return Edit{Value: string(runes[:cursor-1]) + string(runes[cursor:]), Cursor: cursor - 1}
	default:
		if cursor == len(runes) {
			return Edit{Value: value, Cursor: cursor}
		}
		return Edit{Value: string(runes[:cursor]) + string(runes[cursor+1:]), Cursor: cursor}
	}
}

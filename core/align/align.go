// Package align pads prescription titles to a fixed column width so that
// the quantity column lines up in monospace output.
package align

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	// Width is the target column count of an aligned title.
	Width = 70
	// Fill is the padding character.
	Fill = "-"
)

// columns measures titles with ambiguous-width runes (±, µ, º) as one
// column whatever the host locale says.
var columns = &runewidth.Condition{EastAsianWidth: false, StrictEmojiNeutral: true}

// Title collapses doubled fill characters and appends fill characters until
// the title reaches Width columns. At least one fill character is always
// appended, even when the title is already Width columns or wider.
//
// The collapse is a single literal pass, so a run of four fill characters
// becomes two rather than one.
//
// TODO: switch both this and the transcript space collapse to fixed-point
// loops once existing prescriptions no longer depend on the one-pass output.
func Title(title string) string {
	title = strings.ReplaceAll(title, Fill+Fill, Fill)
	pad := Width - columns.StringWidth(title)
	if pad < 1 {
		pad = 1
	}
	return title + strings.Repeat(Fill, pad)
}

package align

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestTitle_PadsToWidth(t *testing.T) {
	got := Title("Title")
	assert.Len(t, got, Width)
	assert.True(t, strings.HasPrefix(got, "Title"))
	assert.True(t, strings.HasSuffix(got, "-"))
	assert.Equal(t, "Title"+strings.Repeat("-", 65), got)
}

func TestTitle_AtLeastOneFill(t *testing.T) {
	exact := strings.Repeat("a", 70)
	assert.Equal(t, exact+"-", Title(exact))

	long := strings.Repeat("b", 90)
	assert.Equal(t, long+"-", Title(long))
}

func TestTitle_EmptyTitle(t *testing.T) {
	assert.Equal(t, strings.Repeat("-", Width), Title(""))
}

func TestTitle_SinglePassCollapse(t *testing.T) {
	assert.Equal(t, "a-b"+strings.Repeat("-", 67), Title("a--b"))
	// Four fill characters only halve.
	got := Title("a----b")
	assert.True(t, strings.HasPrefix(got, "a--b"))
	assert.Len(t, got, Width)
}

func TestTitle_CountsColumnsNotBytes(t *testing.T) {
	got := Title("Nistatina 100.000 UI/mL - solução")
	assert.Equal(t, Width, len([]rune(got)))
}

func TestTitle_AmbiguousWidthIgnoresLocale(t *testing.T) {
	// A CJK locale flips the package default to count these runes as two
	// columns.
	prev := runewidth.DefaultCondition.EastAsianWidth
	runewidth.DefaultCondition.EastAsianWidth = true
	t.Cleanup(func() { runewidth.DefaultCondition.EastAsianWidth = prev })

	for _, title := range []string{"Vitamina D 1000 UI ± 5µg", "Cetoprofeno 100mg · 1º dia"} {
		assert.Equal(t, Width, len([]rune(Title(title))), title)
	}
}

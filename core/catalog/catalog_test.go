package catalog

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/receita/core/align"
	"github.com/gaurav-prasanna/receita/core/collect"
	"github.com/gaurav-prasanna/receita/core/document"
)

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	f, err := os.Open("testdata/catalog.yaml")
	require.NoError(t, err)
	defer f.Close()

	c, err := Load(f)
	require.NoError(t, err)
	return c
}

func TestLoad_SortsAndNumbers(t *testing.T) {
	c := loadTestCatalog(t)
	require.Len(t, c.Medicines, 4)

	names := make([]string, len(c.Medicines))
	for i, m := range c.Medicines {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"Dipirona 500mg", "Ibuprofeno 600mg", "Lactulose 667mg/mL", "Nistatina 100.000 UI/mL"}, names)

	ibu, ok := c.Find(4)
	require.True(t, ok)
	assert.Equal(t, Oral, ibu.Route, "missing route defaults to oral")
}

func TestLoad_JSON(t *testing.T) {
	c, err := Load(strings.NewReader(`{"medicines":[{"id":7,"name":"Soro","type":"nasal","title":"Soro - 1","description":"Aplicar"}]}`))
	require.NoError(t, err)
	m, ok := c.Find(7)
	require.True(t, ok)
	assert.Equal(t, Nasal, m.Route)
}

func TestLoad_UnknownRoute(t *testing.T) {
	_, err := Load(strings.NewReader("medicines:\n  - name: X\n    type: rectal\n"))
	assert.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	c, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, c.Medicines)
}

func TestSearch(t *testing.T) {
	c := loadTestCatalog(t)
	assert.Len(t, c.Search("IBU"), 1)
	assert.Len(t, c.Search(""), 4)
	assert.Empty(t, c.Search("zzz"))
}

func TestToggle(t *testing.T) {
	m := Medicine{ID: 1, Name: "Dipirona", Route: Oral, Title: "Dipirona 500mg", Description: "Tomar 6/6"}
	p := NewPrescription()

	assert.True(t, p.Toggle(m))
	assert.True(t, p.Contains(m))
	d := p.Doses[Oral][0]
	assert.Equal(t, align.Title("Dipirona 500mg"), d.Title)
	assert.Equal(t, "Tomar 6/6", d.Description)

	assert.False(t, p.Toggle(m))
	assert.False(t, p.Contains(m))
	assert.Equal(t, 0, p.Len())
}

func TestSwap(t *testing.T) {
	p := NewPrescription()
	p.Toggle(Medicine{ID: 1, Route: Oral, Title: "A"})
	p.Toggle(Medicine{ID: 2, Route: Oral, Title: "B"})

	require.NoError(t, p.Swap(Oral, 0, 1))
	assert.Equal(t, 2, p.Doses[Oral][0].Medicine.ID)
	assert.Error(t, p.Swap(Oral, 0, 2))
	assert.Error(t, p.Swap(Nasal, 0, 0))
}

func TestDocument_Transcript(t *testing.T) {
	p := NewPrescription()
	p.Toggle(Medicine{ID: 3, Route: Nasal, Title: "Soro", Description: "Aplicar 2/2 horas"})
	p.Toggle(Medicine{ID: 1, Route: Oral, Title: "Dipirona", Description: "Tomar 6/6"})

	root := p.Document()
	assert.Len(t, root.Fields(), 4)

	got := collect.Collect(root, false)
	want := "Uso oral \n\n1. " + align.Title("Dipirona") + "\nTomar 6/6\n\n" +
		"Uso Nasal \n\n1. " + align.Title("Soro") + "\nAplicar 2/2 horas\n\n"
	assert.Equal(t, want, got)

	var controls int
	root.Walk(func(n *document.Node) bool {
		if n.Kind == document.Control {
			controls++
		}
		return true
	})
	assert.Equal(t, 2, controls)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "injetável", Injectable.Label())
	assert.Equal(t, "other", Route("other").Label())
	assert.False(t, Route("other").Valid())
}

// Package catalog models the medicine catalog and the prescription being
// composed from it, and renders a prescription as a document tree.
package catalog

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/receita/core/align"
	"github.com/gaurav-prasanna/receita/core/document"
)

// Route is the administration route a medicine is filed under.
type Route string

const (
	Oral             Route = "oral"
	Injectable       Route = "injectable"
	Topic            Route = "topic"
	TopicOftamologic Route = "topicOftamologic"
	TopicOtologic    Route = "topicOtologic"
	Nasal            Route = "nasal"
	Inhalational     Route = "inhalational"
)

// Routes lists every route in the order a prescription prints them.
var Routes = []Route{Oral, Injectable, Topic, TopicOftamologic, TopicOtologic, Nasal, Inhalational}

var routeLabels = map[Route]string{
	Oral:             "oral",
	Injectable:       "injetável",
	Topic:            "Tópico",
	TopicOftamologic: "Tópico Oftamológico",
	TopicOtologic:    "Tópico Otológico",
	Nasal:            "Nasal",
	Inhalational:     "Inalatório",
}

// Label returns the printed label of the route.
func (r Route) Label() string {
	if l, ok := routeLabels[r]; ok {
		return l
	}
	return string(r)
}

// Valid reports whether r is a known route.
func (r Route) Valid() bool {
	_, ok := routeLabels[r]
	return ok
}

// Medicine is a catalog entry.
type Medicine struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Route       Route  `json:"type" yaml:"type"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Dosage is a medicine as it appears on a prescription, with the title and
// description the author may have edited.
type Dosage struct {
	Medicine    Medicine `json:"medicine"`
	Title       string   `json:"customTitle"`
	Description string   `json:"customDescription"`
}

// NewDosage returns the default dosage for m: the catalog title aligned to
// the title width and the catalog description.
func NewDosage(m Medicine) Dosage {
	return Dosage{
		Medicine:    m,
		Title:       align.Title(m.Title),
		Description: m.Description,
	}
}

// Prescription holds the dosages of each route, in insertion order.
type Prescription struct {
	Doses map[Route][]Dosage `json:"doses"`
}

// NewPrescription returns an empty prescription.
func NewPrescription() *Prescription {
	return &Prescription{Doses: make(map[Route][]Dosage)}
}

// Contains reports whether m is already on the prescription.
func (p *Prescription) Contains(m Medicine) bool {
	for _, d := range p.Doses[m.Route] {
		if d.Medicine.ID == m.ID {
			return true
		}
	}
	return false
}

// Toggle removes m when it is on the prescription and appends its default
// dosage otherwise. It reports whether m is on the prescription afterwards.
func (p *Prescription) Toggle(m Medicine) bool {
	if p.Doses == nil {
		p.Doses = make(map[Route][]Dosage)
	}
	list := p.Doses[m.Route]
	for i, d := range list {
		if d.Medicine.ID == m.ID {
			p.Doses[m.Route] = append(list[:i:i], list[i+1:]...)
			return false
		}
	}
	p.Doses[m.Route] = append(list, NewDosage(m))
	return true
}

// Swap exchanges two dosages of the same route. Dosages never move across
// routes.
func (p *Prescription) Swap(r Route, i, j int) error {
	list := p.Doses[r]
	if i < 0 || j < 0 || i >= len(list) || j >= len(list) {
		return fmt.Errorf("swap %s: index out of range (%d, %d of %d)", r, i, j, len(list))
	}
	list[i], list[j] = list[j], list[i]
	return nil
}

// Len returns the number of dosages across all routes.
func (p *Prescription) Len() int {
	n := 0
	for _, l := range p.Doses {
		n += len(l)
	}
	return n
}

// Document renders the prescription as the editable document tree: one
// section per non-empty route with a heading and a numbered list, each item
// holding the title field, the description field and a remove control.
func (p *Prescription) Document() *document.Node {
	root := document.Div()
	for _, r := range Routes {
		doses := p.Doses[r]
		if len(doses) == 0 {
			continue
		}
		list := document.OL()
		for _, d := range doses {
			title := document.Input(d.Title)
			desc := document.Input(d.Description)
			list.Children = append(list.Children, document.LI(
				document.Div(title, desc, document.Button("-")),
			))
		}
		root.Children = append(root.Children, document.Div(
			document.H(2, "Uso "+r.Label()),
			list,
		))
	}
	return root
}

// Catalog is the list of medicines available to compose from.
type Catalog struct {
	Medicines []Medicine `json:"medicines" yaml:"medicines"`
}

// Load reads a catalog in YAML or JSON. Entries without an ID are numbered
// from 1 in file order. Medicines are sorted by name.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		if err == io.EOF {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	for i := range c.Medicines {
		m := &c.Medicines[i]
		if m.ID == 0 {
			m.ID = i + 1
		}
		if m.Route == "" {
			m.Route = Oral
		}
		if !m.Route.Valid() {
			return nil, fmt.Errorf("medicine %q: unknown route %q", m.Name, m.Route)
		}
	}
	sort.SliceStable(c.Medicines, func(i, j int) bool {
		return strings.ToLower(c.Medicines[i].Name) < strings.ToLower(c.Medicines[j].Name)
	})
	return &c, nil
}

// Find returns the medicine with the given ID.
func (c *Catalog) Find(id int) (Medicine, bool) {
	for _, m := range c.Medicines {
		if m.ID == id {
			return m, true
		}
	}
	return Medicine{}, false
}

// Search returns medicines whose name contains query, ignoring case.
func (c *Catalog) Search(query string) []Medicine {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Medicine
	for _, m := range c.Medicines {
		if q == "" || strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	return out
}

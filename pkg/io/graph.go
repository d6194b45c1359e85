package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

type document struct {
	Name  string `json:"name,omitempty"`
	Units []unit `json:"units"`
}

type unit struct {
	ID         string             `json:"id"`
	Population int                `json:"population"`
	Attrs      map[string]float64 `json:"attrs,omitempty"`
	Neighbors  []string           `json:"neighbors"`
}

// ReadJSON decodes a JSON graph from r. opts are passed to [unitgraph.New].
// ReadJSON does not close r.
func ReadJSON(r io.Reader, opts ...unitgraph.Option) (*unitgraph.Graph, error) {
	doc, err := decode(r)
	if err != nil {
		return nil, err
	}
	units := make([]unitgraph.Unit, len(doc.Units))
	for i, u := range doc.Units {
		units[i] = unitgraph.Unit{
			ID:         u.ID,
			Population: u.Population,
			Attrs:      u.Attrs,
			Neighbors:  u.Neighbors,
		}
	}
	return unitgraph.New(units, opts...)
}

// ImportJSON reads a JSON graph file at path.
func ImportJSON(path string, opts ...unitgraph.Option) (*unitgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, err := ReadJSON(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ReadName returns the optional "name" of a JSON graph document without
// building the graph.
func ReadName(r io.Reader) (string, error) {
	var head struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r).Decode(&head); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	return head.Name, nil
}

func decode(r io.Reader) (*document, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &doc, nil
}

// WriteJSON encodes g as a JSON graph document named name.
// The output round-trips through [ReadJSON].
func WriteJSON(g *unitgraph.Graph, name string, w io.Writer) error {
	doc := document{Name: name, Units: make([]unit, g.Len())}
	for i, id := range g.Units() {
		u, _ := g.Unit(id)
		doc.Units[i] = unit{
			ID:         u.ID,
			Population: u.Population,
			Attrs:      u.Attrs,
			Neighbors:  u.Neighbors,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *unitgraph.Graph, name, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, name, f)
}

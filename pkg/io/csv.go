package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

// Column names recognized by [ReadCSV], case-insensitively.
const (
	ColumnID         = "id"
	ColumnPopulation = "population"
	ColumnNeighbors  = "neighbors"
)

// ReadCSV decodes a units table from r. The header must contain the id,
// population and neighbors columns; every other column must be numeric and
// becomes an attribute. Empty attribute cells are skipped.
func ReadCSV(r io.Reader, opts ...unitgraph.Option) (*unitgraph.Graph, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idCol, popCol, nbCol := -1, -1, -1
	attrCols := map[int]string{}
	for i, h := range header {
		name := strings.TrimSpace(h)
		switch strings.ToLower(name) {
		case ColumnID:
			idCol = i
		case ColumnPopulation:
			popCol = i
		case ColumnNeighbors:
			nbCol = i
		default:
			attrCols[i] = name
		}
	}
	if idCol < 0 || popCol < 0 || nbCol < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"header must contain %s, %s and %s columns", ColumnID, ColumnPopulation, ColumnNeighbors)
	}

	var units []unitgraph.Unit
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		line, _ := cr.FieldPos(0)

		pop, err := strconv.Atoi(strings.TrimSpace(rec[popCol]))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d: population", line)
		}
		u := unitgraph.Unit{
			ID:         strings.TrimSpace(rec[idCol]),
			Population: pop,
			Neighbors:  splitNeighbors(rec[nbCol]),
		}
		for col, name := range attrCols {
			cell := strings.TrimSpace(rec[col])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d: column %s", line, name)
			}
			if u.Attrs == nil {
				u.Attrs = unitgraph.Attributes{}
			}
			u.Attrs[name] = v
		}
		units = append(units, u)
	}
	return unitgraph.New(units, opts...)
}

// ImportCSV reads a units table file at path.
func ImportCSV(path string, opts ...unitgraph.Option) (*unitgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, err := ReadCSV(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func splitNeighbors(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ' ' || r == '\t'
	})
}

package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/partition"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

// Plan is the JSON form of an assignment. A nil district means unassigned.
type Plan struct {
	NumDistricts int             `json:"num_districts"`
	Assignments  map[string]*int `json:"assignments"`
}

// NewPlan converts p to its JSON form.
func NewPlan(p *partition.Partition) Plan {
	out := Plan{NumDistricts: p.NumDistricts(), Assignments: make(map[string]*int, p.Len())}
	for id, d := range p.Mapping() {
		if d == 0 {
			out.Assignments[id] = nil
			continue
		}
		out.Assignments[id] = &d
	}
	return out
}

// Partition rebuilds the partition over g.
func (pl Plan) Partition(g *unitgraph.Graph) (*partition.Partition, error) {
	m := make(partition.Mapping, len(pl.Assignments))
	for id, d := range pl.Assignments {
		if d != nil {
			if *d == 0 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "unit %q: district 0 is not valid, use null", id)
			}
			m[id] = *d
		} else {
			m[id] = 0
		}
	}
	return partition.FromMapping(g, pl.NumDistricts, m)
}

// WriteAssignmentJSON encodes p as a JSON plan.
func WriteAssignmentJSON(p *partition.Partition, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewPlan(p)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadAssignmentJSON decodes a JSON plan and replays it over g.
func ReadAssignmentJSON(r io.Reader, g *unitgraph.Graph) (*partition.Partition, error) {
	var pl Plan
	if err := json.NewDecoder(r).Decode(&pl); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return pl.Partition(g)
}

// WriteAssignmentCSV writes p as "unit,district" rows in unit order, with
// an empty district for unassigned units.
func WriteAssignmentCSV(p *partition.Partition, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"unit", "district"}); err != nil {
		return err
	}
	g := p.Graph()
	for i := 0; i < p.Len(); i++ {
		d := ""
		if a := p.At(i); a.IsAssigned() {
			d = a.String()
		}
		if err := cw.Write([]string{g.ID(i), d}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadAssignmentCSV reads "unit,district" rows and replays them over g.
// n is the district count; 0 takes the largest district in the table.
func ReadAssignmentCSV(r io.Reader, g *unitgraph.Graph, n int) (*partition.Partition, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(rows) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "unit") {
		rows = rows[1:]
	}

	m := make(partition.Mapping, len(rows))
	for k, row := range rows {
		id := strings.TrimSpace(row[0])
		if _, dup := m[id]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unit %q listed twice", id)
		}
		cell := strings.TrimSpace(row[1])
		if cell == "" {
			m[id] = 0
			continue
		}
		d, err := strconv.Atoi(cell)
		if err != nil || d < 1 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "row %d: bad district %q", k+1, cell)
		}
		m[id] = d
	}
	if n == 0 {
		n = m.MaxDistrict()
	}
	return partition.FromMapping(g, n, m)
}

// ExportAssignment writes p to path, as JSON when path ends in .json and
// as CSV otherwise.
func ExportAssignment(p *partition.Partition, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if isJSON(path) {
		return WriteAssignmentJSON(p, f)
	}
	return WriteAssignmentCSV(p, f)
}

// ImportAssignment reads an assignment file written by [ExportAssignment].
func ImportAssignment(path string, g *unitgraph.Graph, n int) (*partition.Partition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if isJSON(path) {
		return ReadAssignmentJSON(f, g)
	}
	return ReadAssignmentCSV(f, g, n)
}

// ImportGraph reads a graph file, choosing the format by extension.
func ImportGraph(path string, opts ...unitgraph.Option) (*unitgraph.Graph, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ImportCSV(path, opts...)
	}
	return ImportJSON(path, opts...)
}

func isJSON(path string) bool { return strings.EqualFold(filepath.Ext(path), ".json") }

// Package io reads and writes unit graphs and district assignments.
//
// # Graph JSON
//
// A graph file lists every unit with its population, optional numeric
// attributes and neighbor ids:
//
//	{
//	  "name": "Georgia",
//	  "units": [
//	    {"id": "13001-A", "population": 812, "attrs": {"dem": 210, "rep": 388}, "neighbors": ["13001-B"]},
//	    {"id": "13001-B", "population": 455, "neighbors": ["13001-A"]}
//	  ]
//	}
//
// Use [ReadJSON] / [ImportJSON] to decode and [WriteJSON] / [ExportJSON] to
// encode. The optional name is what dataset listings show.
//
// # Graph CSV
//
// [ReadCSV] accepts a flat table with an id column, a population column and
// a neighbors column holding ids separated by ';' or whitespace. Every other
// column is parsed as a numeric attribute:
//
//	id,population,neighbors,dem,rep
//	A,812,B;C,210,388
//
// # Assignments
//
// A drawn plan is persisted as a unit → district table only. The CSV form
// has a unit and a district column, with an empty district for unassigned
// units. The JSON form is
//
//	{"num_districts": 14, "assignments": {"13001-A": 3, "13001-B": null}}
//
// Reading either form back over the same graph restores the partition
// exactly.
//
// # Errors
//
// Structural problems (unknown neighbors, bad populations, districts out of
// range) are reported as MALFORMED_GRAPH or INVALID_INPUT errors from
// pkg/errors; decoding failures are wrapped with their location.
package io

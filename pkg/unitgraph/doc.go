// Package unitgraph provides the immutable adjacency graph of areal units
// (precincts, VTDs, census blocks) that districting operates on.
//
// # Overview
//
// A [Graph] holds every unit's identifier, population, optional secondary
// scalar attributes (vote totals, area) and the set of units it touches. The
// graph never computes adjacency itself: callers hand in a precomputed
// neighbor list per unit, typically produced once from polygon geometry and
// cached as JSON or CSV (see package io).
//
// Construct a graph with [New]:
//
//	g, err := unitgraph.New([]unitgraph.Unit{
//	    {ID: "a", Population: 100, Neighbors: []string{"b"}},
//	    {ID: "b", Population: 120, Neighbors: []string{"a"}},
//	}, unitgraph.WithStrictSymmetry())
//
// Construction fails with an error carrying errors.ErrCodeMalformedGraph when
// a neighbor reference points outside the unit set, when ids are duplicated
// or when populations are negative. With [WithStrictSymmetry], any one-way
// adjacency (A lists B but B does not list A) is rejected too.
//
// # Indices
//
// Units are addressed by a dense index in construction order. The index-based
// accessors ([Graph.NeighborIndices], [Graph.PopulationAt]) are what the
// districting algorithms use; the id-based accessors exist for callers at the
// edges of the system. Neighbor indices are sorted ascending so that every
// traversal is independent of the order neighbors were listed in the input.
//
// # Concurrency
//
// A Graph is immutable after [New] returns and is safe for concurrent reads.
package unitgraph

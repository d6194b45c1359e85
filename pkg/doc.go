// Package pkg provides the core libraries for mapdraw district drawing.
//
// # Overview
//
// mapdraw partitions a graph of geographic units (precincts, blocks) into a
// fixed number of contiguous, population-balanced districts. The pkg
// directory is organized into three areas:
//
//  1. Domain logic: [unitgraph], [partition], [districting], [stats]
//  2. Infrastructure: [cache], [store], [observability], [errors]
//  3. Orchestration: [io] and [pipeline] (load → draw → export)
//
// # Architecture
//
// The typical data flow:
//
//	graph.json / graph.csv / dataset
//	         ↓
//	    [io] package (parse into a unitgraph.Graph)
//	         ↓
//	    [districting] package (seed → grow → fill → balance → repair)
//	         ↓
//	    [partition] package (unit → district assignment)
//	         ↓
//	    [stats] summary, [io] export, [store] persistence
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/mapdraw/pkg/districting"
//	    mdio "github.com/matzehuels/mapdraw/pkg/io"
//	)
//
//	g, _ := mdio.ImportJSON("georgia.json")
//	res, _ := districting.Run(context.Background(), g, districting.Config{
//	    NumDistricts:     14,
//	    AllowedDeviation: 70000,
//	    Seed:             2023,
//	})
//	_ = mdio.ExportAssignment(res.Partition, "georgia.plan.csv")
//
// Runs are deterministic for a given graph, configuration and seed.
//
// # Main Packages
//
// [unitgraph] - Immutable unit adjacency graph with populations and numeric
// attributes. Neighbor lists are sorted so iteration order is stable.
//
// [partition] - Mutable unit to district assignment with per-district
// population totals and membership sets.
//
// [districting] - The drawing algorithm. Seeds are placed by dart throwing or
// isolation, regions grow by frontier expansion or random walks, unassigned
// gaps are absorbed, and boundary units are traded between neighbors until
// the population deviation is within bounds. [districting.Run] returns the
// partition together with [districting.Diagnostics].
//
// [stats] - Per-district population, deviation, vote margin and density.
//
// [io] - Graph readers and writers (JSON, CSV) and plan import/export.
//
// [pipeline] - Option validation, dataset lookup, and a cached [pipeline.Runner]
// shared by the CLI and the HTTP API.
//
// [cache] - Content-addressed plan cache (file, Redis, null).
//
// [store] - Saved plans for the HTTP API (memory, files, MongoDB).
//
// [unitgraph]: https://pkg.go.dev/github.com/matzehuels/mapdraw/pkg/unitgraph
// [partition]: https://pkg.go.dev/github.com/matzehuels/mapdraw/pkg/partition
// [districting]: https://pkg.go.dev/github.com/matzehuels/mapdraw/pkg/districting
// [stats]: https://pkg.go.dev/github.com/matzehuels/mapdraw/pkg/stats
// [io]: https://pkg.go.dev/github.com/matzehuels/mapdraw/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mapdraw/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/mapdraw/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/mapdraw/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/mapdraw/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/mapdraw/pkg/errors
package pkg

// Package districting draws contiguous, population-balanced districts over a
// [unitgraph.Graph].
//
// A run is a fixed sequence of phases that all mutate one shared
// [partition.Partition]:
//
//  1. Seeds are picked ([PickSeeds]) and regions grow from them, either by
//     frontier expansion ([GrowFrontier]) or by a random walk ([GrowWalk]).
//  2. Units that growth could not reach are assigned by [FillGaps].
//  3. [Balance] moves boundary units from over-populated to under-populated
//     districts, repairing orphaned units after every round
//     ([RepairOrphans]), until the deviation is within bounds, a two-round
//     cycle is detected, or the round limit is hit.
//
// [Run] executes the phases and returns the partition together with
// [Diagnostics] describing how each phase ended. None of the terminal
// conditions (a deadlocked district, an unreachable gap, a balancing cycle)
// abort the run; they are reported.
//
// Every random choice is drawn from one *rand.Rand created from
// [Config.Seed], so the same graph and configuration always yield the same
// partition.
package districting

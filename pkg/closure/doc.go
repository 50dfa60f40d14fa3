// Package closure computes the Z-closure of a pool of partial splits.
//
// # Zig-zag rule
//
// Two partial splits ps1 = (A1, B1) and ps2 = (A2, B2) combine when, for some
// orientation of each,
//
//	A1 ∩ A2 ≠ ∅,  A2 ∩ B1 ≠ ∅,  B1 ∩ B2 ≠ ∅,  A1 ∩ B2 = ∅
//
// into (A1, B1 ∪ B2) and (A1 ∪ A2, B2). [ApplyZigZag] tests the four
// orientations in a fixed order (ps1 as given, then swapped; within each,
// ps2 as given, then swapped) and applies the first one whose rewrite
// changes the pair. Each orientation requires a different one of the four
// side intersections to be the empty one, so at most one orientation can
// match; [Orientations] counts them.
//
// # Fixpoint
//
// Each run owns a working array of splits. When a pair fires, the two
// positions are overwritten by the rewritten splits, so the pair it came from
// is gone. Rounds are evaluated semi-naively: positions rewritten in the
// previous round (active) are compared with every other position, and
// positions that were left alone (senior) are not compared with each other
// again. Duplicates are dropped at the end of every round. The run ends when a
// round rewrites nothing, at which point no pair of its splits fires.
//
// Because rewrites discard their inputs, the result depends on the order in
// which pairs are visited. Multiple runs shuffle a private copy of the input
// with a seeded PCG and [Close] returns the union of their splits in run
// order. Runs may execute concurrently.
package closure

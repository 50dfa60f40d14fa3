// Package splits provides partial splits, the deduplicating split pool, and
// the final split system produced by the Z-closure pipeline.
//
// # Partial splits
//
// A [PartialSplit] is a pair (A, B) of disjoint taxon sets that need not
// cover every taxon. Sides are stored canonically: the side whose lowest
// member is smaller comes first, and an empty side always comes last. So
// New(A, B) and New(B, A) are equal and hash equally.
//
// # Pools
//
// A [Pool] is an insertion-ordered set of partial splits keyed by their
// structural hash and equality. Go map keys cannot carry custom equality, so
// the pool buckets entries by [PartialSplit.Hash] and compares sides within a
// bucket.
//
// # Split systems
//
// A [System] is the output: full splits over n taxa, each stored by one side
// with its weight, confidence and an optional label.
package splits

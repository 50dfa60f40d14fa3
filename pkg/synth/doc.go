// Package synth turns a closed pool of partial splits into a weighted split
// system over all taxa.
//
// [Synthesize] keeps the full splits of the pool, optionally drops those that
// contradict an input tree (super-tree mode), adds the trivial split of every
// taxon not yet separated from the rest, and assigns weights and confidences
// from the per-tree edge weights under a [Weighting] policy.
package synth

// Package taxa provides the taxon table and the bit-vector taxon sets used
// throughout zclosure.
//
// Taxa are numbered 1..n in the order they were added to a [Taxa] table. A
// [Set] is a bit vector over those indices; index 0 is never a member. Sets
// are immutable by convention: [Set.Union], [Set.Intersect] and [Set.Minus]
// return fresh sets, and only [Set.Add] mutates, which callers use while
// building a set and never after it has been attached to a split.
//
// # Hidden taxa
//
// A table can hide taxa with [Taxa.Hide]. Hidden taxa keep their index but
// never contribute to a tree's support set, which restricts the closure to the
// remaining taxa without renumbering.
package taxa

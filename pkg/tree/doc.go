// Package tree holds the in-memory form of a (possibly partial) phylogenetic
// tree: a rooted node hierarchy with optional labels on every node and an
// optional length on every edge.
//
// Trees are produced by the Newick reader in [github.com/matzehuels/zclosure/pkg/io]
// or built directly with [Leaf] and [Inner]:
//
//	t := &tree.Tree{Root: tree.Inner(tree.NoLength,
//		tree.Leaf("A", 1.5),
//		tree.Inner(2, tree.Leaf("B", 1), tree.Leaf("C", 1)),
//	)}
//
// The root is arbitrary. Splits only depend on which taxa hang below each
// edge, so any rooting of the same unrooted tree yields the same splits.
package tree

// Package extract turns trees into partial splits.
//
// Every edge of a tree bipartitions the taxa that tree mentions (its support
// set): the taxa below the edge against the rest of the support. Partial
// trees therefore yield partial splits that only cover part of the global
// taxon table. [Extract] handles one tree and [ExtractAll] a collection;
// [NonTrivial] merges the per-tree results into the starting pool for
// [github.com/matzehuels/zclosure/pkg/closure].
package extract

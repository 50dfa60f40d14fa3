// Package io reads trees and taxon tables and writes split systems.
//
// # Input
//
// Trees are read in Newick format with [ReadNewick] or [ImportNewick]. A
// source may hold any number of trees, each terminated by a semicolon:
//
//	((A:1,B:2):3,C:4,D:5);
//	(A,(C,E));
//
// Parsing is done by github.com/evolbioinfo/gotree; the result is converted
// to [tree.Tree] values. Missing branch lengths become [tree.NoLength].
//
// [TaxaFromTrees] builds a taxon table from leaf labels in order of first
// appearance. [ReadTaxa] reads an explicit table, one label per line; blank
// lines and lines starting with '#' are skipped.
//
// # Output
//
// [WriteSystem] encodes a split system as JSON and [ReadSystem] decodes it:
//
//	{
//	  "taxa": ["A", "B", "C", "D"],
//	  "splits": [
//	    {"side": [1, 3], "weight": 5.5, "confidence": 2}
//	  ]
//	}
//
// Sides list 1-based taxon indices; the other side of each split is every
// visible taxon not listed. [WriteNexus] writes the same system as NEXUS
// TAXA and SPLITS blocks for SplitsTree and similar tools.
//
// [tree.Tree]: github.com/matzehuels/zclosure/pkg/tree.Tree
// [tree.NoLength]: github.com/matzehuels/zclosure/pkg/tree.NoLength
package io

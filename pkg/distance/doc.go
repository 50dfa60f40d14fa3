// Package distance builds the averaged patristic distance matrix of a tree
// collection.
//
// The distance between two taxa in one tree is the sum of edge weights on the
// path between them (missing lengths count as 1). [Average] averages it over
// every tree that mentions both taxa; pairs that never co-occur stay missing,
// and [Matrix.AllPairs] reports whether there are none.
package distance

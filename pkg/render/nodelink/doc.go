// Package nodelink renders split systems as incompatibility graphs.
//
// # Overview
//
// Every split becomes a node; two nodes are joined when their splits are
// incompatible, meaning all four side intersections are non-empty. A
// compatible system (one that a single tree displays) renders as isolated
// nodes, so the edges show where the synthesized system needs a network.
//
// # Usage
//
//	dot := nodelink.ToDOT(sys, tx, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Trivial splits are compatible with every other split and are omitted
// unless [Options].Trivial is set. Splits with a non-positive weight are
// outlined in red.
//
// # Dependencies
//
// SVG rendering runs Graphviz in-process through [github.com/goccy/go-graphviz].
// The DOT output uses the neato layout and can also be fed to external
// Graphviz tools.
package nodelink

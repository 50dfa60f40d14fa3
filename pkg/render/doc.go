// Package render groups the diagnostic renderers for split systems.
//
// The [nodelink] subpackage draws the incompatibility graph of a system
// using Graphviz:
//
//	dot := nodelink.ToDOT(sys, tx, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/zclosure/pkg/render/nodelink
package render

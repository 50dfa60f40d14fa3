package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/zclosure/pkg/splits"
	"github.com/matzehuels/zclosure/pkg/taxa"
)

// Options configures incompatibility graph rendering.
type Options struct {
	// Detailed adds weight and confidence to node labels.
	Detailed bool
	// Trivial includes splits that isolate a single taxon. Trivial splits are
	// compatible with everything, so they are left out by default.
	Trivial bool
}

// ToDOT converts a split system to an undirected Graphviz graph with one node
// per split and an edge between every pair of incompatible splits.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Taxon labels come from tx; a nil tx prints taxon indices.
func ToDOT(sys *splits.System, tx *taxa.Taxa, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	var shown []int
	for i, sp := range sys.Splits {
		trivial := isTrivial(sys, i)
		if trivial && !opts.Trivial {
			continue
		}
		shown = append(shown, i)
		label := fmtLabel(sys, i, tx, opts.Detailed)
		attrs := fmtAttrs(sp, label, trivial)
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(i), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for x, i := range shown {
		for _, j := range shown[x+1:] {
			if !sys.Compatible(i, j) {
				fmt.Fprintf(&buf, "  %q -- %q;\n", nodeID(i), nodeID(j))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(i int) string { return "s" + strconv.Itoa(i+1) }

func isTrivial(sys *splits.System, i int) bool {
	return sys.Splits[i].Side.Len() < 2 || sys.Other(i).Len() < 2
}

func fmtSet(s taxa.Set, tx *taxa.Taxa) string {
	if tx == nil {
		return s.String()
	}
	return tx.Format(s)
}

func fmtLabel(sys *splits.System, i int, tx *taxa.Taxa, detailed bool) string {
	sp := sys.Splits[i]
	label := fmtSet(sp.Side, tx) + " | " + fmtSet(sys.Other(i), tx)
	if sp.Label != "" {
		label = sp.Label + "\n" + label
	}
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nweight: %g\nconfidence: %g", label, sp.Weight, sp.Confidence)
}

func fmtAttrs(sp splits.Split, label string, trivial bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if trivial {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	if sp.Weight <= 0 {
		attrs = append(attrs, "color=red")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from its
// viewBox instead of Graphviz's point-based width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

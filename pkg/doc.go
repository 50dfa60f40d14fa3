// Package pkg provides the core libraries for zclosure.
//
// # Overview
//
// zclosure combines phylogenetic trees that each cover only part of the taxa
// into one weighted split system over all of them. Every tree edge induces a
// partial split; the pool of partial splits is closed under the zig-zag rule
// until full splits emerge, and those are weighted from the input trees.
//
// # Architecture
//
// The typical data flow through zclosure:
//
//	Newick trees
//	     ↓
//	[io] package (parse trees, build the taxon table)
//	     ↓
//	[extract] package (partial splits per tree)
//	     ↓
//	[closure] package (Z-closure of the partial splits)
//	     ↓
//	[synth] package (full splits, trivial splits, weights)
//	     ↓
//	[lsq] package (optional least-squares re-weighting)
//	     ↓
//	JSON / NEXUS / DOT / SVG output
//
// [pipeline] runs all stages with caching and hooks, so the CLI and the HTTP
// API share one code path.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//
//	    zio "github.com/matzehuels/zclosure/pkg/io"
//	    "github.com/matzehuels/zclosure/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(context.Background(), newick, pipeline.Options{Runs: 8})
//	if err != nil {
//	    return err
//	}
//	return zio.WriteNexus(os.Stdout, res.System, res.Taxa)
//
// # Main Packages
//
// ## Domain
//
// [taxa] - Taxon tables and bitset-backed taxon sets.
//
// [tree] - Rooted trees with optional branch lengths.
//
// [splits] - Partial splits, deduplicating pools and full split systems.
//
// [extract], [closure], [synth] - The pipeline stages above.
//
// [distance] and [lsq] - Patristic distances and the least-squares fit.
//
// ## Infrastructure
//
// [cache] - Result caching (file, Redis, null) keyed by input and options.
//
// [store] - Saved runs in files or MongoDB.
//
// [observability] - Hooks for pipeline stages, closure rounds, cache and HTTP.
//
// [errors] - Error codes shared by the CLI and the API.
//
// ## Output
//
// [io] - Newick input; JSON and NEXUS output.
//
// [render/nodelink] - Incompatibility graphs as Graphviz DOT and SVG.
//
// [io]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/io
// [taxa]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/taxa
// [tree]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/tree
// [splits]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/splits
// [extract]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/extract
// [closure]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/closure
// [synth]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/synth
// [distance]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/distance
// [lsq]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/lsq
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/errors
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/zclosure/pkg/render/nodelink
package pkg

package pipeline

import (
	"fmt"

	zio "github.com/matzehuels/zclosure/pkg/io"
	"github.com/matzehuels/zclosure/pkg/taxa"
	"github.com/matzehuels/zclosure/pkg/tree"
)

// Parse reads the Newick trees in input and builds the taxon table.
//
// With an explicit opts.Taxa the table is exactly those labels, in order, and
// a leaf outside it fails extraction later. Otherwise the table holds the leaf
// labels in order of first appearance. opts.Hide is applied last.
func Parse(input []byte, opts Options) ([]*tree.Tree, *taxa.Taxa, error) {
	trees, err := zio.ParseNewick(string(input))
	if err != nil {
		return nil, nil, err
	}
	tx, err := BuildTaxa(trees, opts)
	if err != nil {
		return nil, nil, err
	}
	return trees, tx, nil
}

// BuildTaxa builds the taxon table for already parsed trees. See [Parse].
func BuildTaxa(trees []*tree.Tree, opts Options) (*taxa.Taxa, error) {
	var tx *taxa.Taxa
	var err error
	if len(opts.Taxa) > 0 {
		tx, err = taxa.New(opts.Taxa...)
	} else {
		tx, err = zio.TaxaFromTrees(trees, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("taxa: %w", err)
	}
	if err := tx.Hide(opts.Hide...); err != nil {
		return nil, err
	}
	return tx, nil
}

package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/zclosure/pkg/taxa"
	"github.com/matzehuels/zclosure/pkg/tree"
)

// ReadTaxa reads a taxon table, one label per line.
func ReadTaxa(r io.Reader) (*taxa.Taxa, error) {
	tx := &taxa.Taxa{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		label := strings.TrimSpace(sc.Text())
		if label == "" || strings.HasPrefix(label, "#") {
			continue
		}
		if _, err := tx.Add(label); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return tx, nil
}

// ImportTaxa reads a taxon table from the file at path.
func ImportTaxa(path string) (*taxa.Taxa, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTaxa(f)
}

// TaxaFromTrees adds the leaf labels of trees to tx in order of first
// appearance and returns it. A nil tx starts a new table.
func TaxaFromTrees(trees []*tree.Tree, tx *taxa.Taxa) (*taxa.Taxa, error) {
	if tx == nil {
		tx = &taxa.Taxa{}
	}
	for i, t := range trees {
		for _, leaf := range t.Leaves() {
			if leaf.Label == "" {
				continue
			}
			if _, err := tx.Ensure(leaf.Label); err != nil {
				return nil, fmt.Errorf("tree %d: %w", i+1, err)
			}
		}
	}
	return tx, nil
}

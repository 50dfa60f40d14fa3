package io

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/evolbioinfo/gotree/io/newick"
	gotree "github.com/evolbioinfo/gotree/tree"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/tree"
)

// ReadNewick parses every tree in r. Empty input yields no trees.
//
// Errors carry the INVALID_FORMAT code and the 1-based index of the tree
// that failed to parse. ReadNewick does not close r.
func ReadNewick(r io.Reader) ([]*tree.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return ParseNewick(string(data))
}

// ParseNewick parses every tree in s.
func ParseNewick(s string) ([]*tree.Tree, error) {
	var out []*tree.Tree
	for _, stmt := range strings.Split(s, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		index := len(out) + 1
		gt, err := newick.NewParser(strings.NewReader(stmt + ";")).Parse()
		if err != nil {
			return nil, zerrors.Wrap(zerrors.ErrCodeInvalidFormat, err, "tree %d", index)
		}
		t, err := convert(gt)
		if err != nil {
			return nil, zerrors.Wrap(zerrors.ErrCodeInvalidFormat, err, "tree %d", index)
		}
		t.Name = fmt.Sprintf("tree%d", index)
		out = append(out, t)
	}
	return out, nil
}

// ImportNewick reads all trees from the file at path.
func ImportNewick(path string) ([]*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadNewick(f)
}

func convert(gt *gotree.Tree) (*tree.Tree, error) {
	root := gt.Root()
	if root == nil {
		return nil, errors.New("no root")
	}
	return &tree.Tree{Root: convertNode(root, nil, tree.NoLength)}, nil
}

func convertNode(n, parent *gotree.Node, length float64) *tree.Node {
	out := &tree.Node{Label: n.Name(), Length: length}
	edges := n.Edges()
	for i, c := range n.Neigh() {
		if c == parent {
			continue
		}
		l := edges[i].Length()
		if l == gotree.NIL_LENGTH {
			l = tree.NoLength
		}
		out.Children = append(out.Children, convertNode(c, n, l))
	}
	return out
}

package extract

import (
	"context"
	"strings"
	"testing"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/splits"
	"github.com/matzehuels/zclosure/pkg/taxa"
	"github.com/matzehuels/zclosure/pkg/tree"
)

func set(m ...int) taxa.Set { return taxa.NewSet(m...) }

func mustTaxa(t *testing.T, labels ...string) *taxa.Taxa {
	t.Helper()
	tx, err := taxa.New(labels...)
	if err != nil {
		t.Fatal(err)
	}
	return tx
}

func TestExtractCompleteTree(t *testing.T) {
	tx := mustTaxa(t, "A", "B", "C", "D")
	// ((A:1,B:2):3,C:4,D:5);
	tr := &tree.Tree{Root: tree.Inner(tree.NoLength,
		tree.Inner(3, tree.Leaf("A", 1), tree.Leaf("B", 2)),
		tree.Leaf("C", 4),
		tree.Leaf("D", 5),
	)}

	res, err := Extract(tr, 1, tx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Support.Equal(set(1, 2, 3, 4)) {
		t.Errorf("Support = %s", res.Support)
	}
	if res.Splits.Len() != 5 {
		t.Errorf("Splits.Len() = %d, want 5", res.Splits.Len())
	}
	if res.AverageWeight != 3 {
		t.Errorf("AverageWeight = %v, want 3", res.AverageWeight)
	}

	tests := []struct {
		ps   *splits.PartialSplit
		want float64
	}{
		{splits.New(set(1, 2), set(3, 4)), 3},
		{splits.New(set(2), set(1, 3, 4)), 2},
		{splits.New(set(4), set(1, 2, 3)), 5},
		{splits.New(set(1, 3), set(2, 4)), 0},
	}
	for _, tt := range tests {
		if got := res.Weight(tt.ps); got != tt.want {
			t.Errorf("Weight(%s) = %v, want %v", tt.ps, got, tt.want)
		}
	}
}

func TestExtractMergesRootEdges(t *testing.T) {
	tx := mustTaxa(t, "A", "B", "C", "D")
	tr := &tree.Tree{Root: tree.Inner(tree.NoLength,
		tree.Inner(1, tree.Leaf("A", 1), tree.Leaf("B", 1)),
		tree.Inner(2, tree.Leaf("C", 1), tree.Leaf("D", 1)),
	)}

	res, err := Extract(tr, 1, tx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Splits.Len() != 5 {
		t.Errorf("Splits.Len() = %d, want 5", res.Splits.Len())
	}
	if got := res.Weight(splits.New(set(1, 2), set(3, 4))); got != 3 {
		t.Errorf("merged weight = %v, want 3", got)
	}
}

func TestExtractPartialTree(t *testing.T) {
	tx := mustTaxa(t, "A", "B", "C", "D", "E")
	tr := &tree.Tree{Root: tree.Inner(tree.NoLength,
		tree.Leaf("A", tree.NoLength),
		tree.Leaf("B", tree.NoLength),
		tree.Inner(tree.NoLength, tree.Leaf("C", tree.NoLength), tree.Leaf("D", tree.NoLength)),
	)}

	res, err := Extract(tr, 1, tx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Support.Equal(set(1, 2, 3, 4)) {
		t.Errorf("Support = %s", res.Support)
	}
	if got := res.Weight(splits.New(set(1, 2), set(3, 4))); got != 1 {
		t.Errorf("missing lengths should weigh 1, got %v", got)
	}
	for _, ps := range res.Splits.Splits() {
		if ps.Support().Has(5) {
			t.Errorf("split %s mentions a taxon outside the tree", ps)
		}
	}
}

func TestExtractHiddenTaxa(t *testing.T) {
	tx := mustTaxa(t, "A", "B", "C", "D")
	if err := tx.Hide("B"); err != nil {
		t.Fatal(err)
	}
	tr := &tree.Tree{Root: tree.Inner(tree.NoLength,
		tree.Inner(tree.NoLength, tree.Leaf("A", tree.NoLength), tree.Leaf("B", tree.NoLength)),
		tree.Leaf("C", tree.NoLength),
		tree.Leaf("D", tree.NoLength),
	)}

	res, err := Extract(tr, 1, tx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Support.Equal(set(1, 3, 4)) {
		t.Errorf("Support = %s", res.Support)
	}
	// The leaf edge of A and the edge above (A,B) now induce the same split.
	if got := res.Weight(splits.New(set(1), set(3, 4))); got != 2 {
		t.Errorf("weight = %v, want 2", got)
	}
	if got := NonTrivial([]*Result{res}).Len(); got != 0 {
		t.Errorf("NonTrivial = %d, want 0", got)
	}
}

func TestExtractIgnoresInternalLabels(t *testing.T) {
	tx := mustTaxa(t, "A", "B", "C", "D")
	inner := tree.Inner(1, tree.Leaf("A", 1), tree.Leaf("B", 1))
	inner.Label = "95"
	tr := &tree.Tree{Root: tree.Inner(tree.NoLength, inner, tree.Leaf("C", 1), tree.Leaf("D", 1))}

	res, err := Extract(tr, 1, tx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Splits.Contains(splits.New(set(1, 2), set(3, 4))) {
		t.Error("missing split {1,2} | {3,4}")
	}
}

func TestExtractErrors(t *testing.T) {
	tx := mustTaxa(t, "A", "B", "C")
	tests := []struct {
		name string
		tree *tree.Tree
		want string
	}{
		{"nil root", &tree.Tree{}, "no root"},
		{"unknown leaf", &tree.Tree{Root: tree.Inner(tree.NoLength, tree.Leaf("A", 1), tree.Leaf("Z", 1))}, `unknown taxon "Z"`},
		{"unlabeled leaf", &tree.Tree{Root: tree.Inner(tree.NoLength, tree.Leaf("A", 1), tree.Leaf("", 1))}, "unlabeled leaf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.tree, 7, tx)
			if !zerrors.Is(err, zerrors.ErrCodeInvalidTree) {
				t.Fatalf("err = %v, want INVALID_TREE", err)
			}
			if !strings.Contains(err.Error(), "tree 7") || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of tree 7 and %q", err, tt.want)
			}
		})
	}
}

func TestExtractAll(t *testing.T) {
	tx := mustTaxa(t, "A", "B", "C", "D", "E")
	t1 := &tree.Tree{Root: tree.Inner(tree.NoLength,
		tree.Inner(1, tree.Leaf("A", 1), tree.Leaf("B", 1)), tree.Leaf("C", 1), tree.Leaf("D", 1))}
	t2 := &tree.Tree{Root: tree.Inner(tree.NoLength,
		tree.Inner(1, tree.Leaf("A", 1), tree.Leaf("B", 1)), tree.Leaf("C", 1), tree.Leaf("E", 1))}

	results, err := ExtractAll(context.Background(), []*tree.Tree{t1, t2}, tx)
	if err != nil {
		t.Fatal(err)
	}
	if results[1].Index != 2 {
		t.Errorf("Index = %d, want 2", results[1].Index)
	}
	if !Union(results).Equal(set(1, 2, 3, 4, 5)) {
		t.Errorf("Union = %s", Union(results))
	}

	pool := NonTrivial(results)
	if pool.Len() != 2 {
		t.Fatalf("NonTrivial Len = %d, want 2", pool.Len())
	}
	pool.At(0).Weight = 99
	if results[0].Weight(pool.At(0)) == 99 {
		t.Error("NonTrivial must copy splits")
	}
}

func TestExtractAllCancelled(t *testing.T) {
	tx := mustTaxa(t, "A", "B")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExtractAll(ctx, []*tree.Tree{{Root: tree.Inner(tree.NoLength, tree.Leaf("A", 1), tree.Leaf("B", 1))}}, tx)
	if !zerrors.IsCancelled(err) {
		t.Errorf("err = %v, want cancellation", err)
	}
}

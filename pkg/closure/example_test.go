package closure_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/zclosure/pkg/closure"
	"github.com/matzehuels/zclosure/pkg/splits"
	"github.com/matzehuels/zclosure/pkg/taxa"
)

func ExampleApplyZigZag() {
	ps1 := splits.New(taxa.NewSet(1, 2), taxa.NewSet(3, 4))
	ps2 := splits.New(taxa.NewSet(2, 3), taxa.NewSet(4, 5))

	out1, out2, ok := closure.ApplyZigZag(ps1, ps2)
	fmt.Println(ok)
	fmt.Println(out1)
	fmt.Println(out2)
	// Output:
	// true
	// {1,2} | {3,4,5}
	// {1,2,3} | {4,5}
}

func ExampleClose() {
	pool := splits.NewPool(
		splits.New(taxa.NewSet(1, 2), taxa.NewSet(3, 4)),
		splits.New(taxa.NewSet(2, 3), taxa.NewSet(4, 5)),
	)
	res, err := closure.Close(context.Background(), pool, closure.Options{Runs: 2, Seed: 42})
	if err != nil {
		panic(err)
	}
	for _, ps := range res.Pool.Splits() {
		fmt.Println(ps)
	}
	// Output:
	// {1,2} | {3,4,5}
	// {1,2,3} | {4,5}
}

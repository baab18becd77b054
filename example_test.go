package annidx_test

import (
	"fmt"

	"github.com/Snider/annidx"
)

// Example builds a kd-forest over a handful of 2D points and finds the two
// nearest neighbors of a query.
func Example() {
	rows := []annidx.Vector{{1, 1}, {3, 3}, {3, 4}, {7, 7}, {7, 6}}
	labels := []string{"a", "b", "c", "d", "e"}

	dataset, err := annidx.NewDataset(rows, labels)
	if err != nil {
		panic(err)
	}

	ix := annidx.New(dataset, annidx.L2Distance{}, annidx.NewParams(annidx.AlgoKDForest, annidx.WithTrees(4)))
	if err := ix.Build(); err != nil {
		panic(err)
	}

	ids, _, err := ix.KNNSearch([]annidx.Vector{{3, 3}}, 2, annidx.SearchParams{Checks: -1, Cores: 1})
	if err != nil {
		panic(err)
	}

	for _, id := range ids[0] {
		fmt.Println(dataset.Value(id))
	}
	// Unordered output:
	// b
	// c
}

package dataset

import (
	"math/rand/v2"
	"time"
)

// ExampleRows is the row count of the example dataset.
const ExampleRows = 100

// ExampleColumns are the fixed column names of the example dataset.
var ExampleColumns = []string{"a", "b", "c", "d", "e", "f", "g"}

// Example generates a 100x7 table of uniform values in [0,1). A zero seed
// draws a fresh random sequence on every call.
func Example(seed uint64) *Dataset {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	values := make([][]float64, len(ExampleColumns))
	for j := range values {
		values[j] = make([]float64, ExampleRows)
	}
	// row-major fill
	for i := 0; i < ExampleRows; i++ {
		for j := range values {
			values[j][i] = rng.Float64()
		}
	}
	ds, err := FromFloats("example", ExampleColumns, values)
	if err != nil {
		// unreachable: the shape is fixed
		panic(err)
	}
	ds.Source = SourceExample
	return ds
}

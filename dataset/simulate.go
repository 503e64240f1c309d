package dataset

import (
	"math/rand/v2"
)

// GenerateClasses simulates nNeg rows labelled 0 and nPos rows labelled 1. Every predictor is
// drawn from N(0, 1) for the negative class and N(shift[j], 1) for the positive class, so a
// large shift makes that predictor separate the classes and a zero shift makes it noise.
func GenerateClasses(names []string, shift []float64, nNeg, nPos int, label string, seed uint64) (*Dataset, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	n := nNeg + nPos
	columns := make([][]float64, len(names)+1)
	for j := range columns {
		columns[j] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		positive := i >= nNeg
		for j := range names {
			v := rng.NormFloat64()
			if positive {
				v += shift[j]
			}
			columns[j][i] = v
		}
		if positive {
			columns[len(names)][i] = 1.0
		}
	}

	allNames := make([]string, 0, len(names)+1)
	allNames = append(allNames, names...)
	allNames = append(allNames, label)
	return NewDataset(allNames, columns, label)
}

package linearmodel

import (
	"math"
	"math/rand/v2"

	mat_ "github.com/aouyang1/go-mealclassifier/mat"

	"gonum.org/v1/gonum/mat"
)

// generateLogisticData draws nObs rows of standard normal features and labels from
// Bernoulli(sigmoid(intercept + x.coef))
func generateLogisticData(nObs int, intercept float64, coef []float64, seed uint64) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewPCG(seed, seed+1))

	data := make([][]float64, nObs)
	y := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		row := make([]float64, len(coef))
		s := intercept
		for j := range row {
			row[j] = rng.NormFloat64()
			s += row[j] * coef[j]
		}
		data[i] = row
		if rng.Float64() < 1.0/(1.0+math.Exp(-s)) {
			y[i] = 1.0
		}
	}
	x, err := mat_.NewDenseFromArray(data)
	if err != nil {
		panic(err)
	}
	return x, mat.NewDense(nObs, 1, y)
}

// generateSeparableData places class 0 around (-3, -3) and class 1 around (3, 3)
func generateSeparableData(nObs int, seed uint64) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewPCG(seed, seed+1))

	x := mat.NewDense(nObs, 2, nil)
	y := mat.NewDense(nObs, 1, nil)
	for i := 0; i < nObs; i++ {
		center := -3.0
		if i%2 == 1 {
			center = 3.0
			y.Set(i, 0, 1.0)
		}
		x.Set(i, 0, center+0.5*rng.NormFloat64())
		x.Set(i, 1, center+0.5*rng.NormFloat64())
	}
	return x, y
}

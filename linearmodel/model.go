// Package linearmodel contains the linear model fits used to score FPED variable subsets: a
// penalized logistic regression classifier, its inference variant reporting per coefficient
// significance, and ordinary least squares used for collinearity diagnostics.
package linearmodel

import (
	"gonum.org/v1/gonum/mat"
)

// Model is satisfied by every fit in this package. x is an (observations x features) matrix
// and y a single column matrix of targets.
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}

var (
	_ Model = (*OLSRegression)(nil)
	_ Model = (*LogisticRegression)(nil)
	_ Model = (*InferenceLogisticRegression)(nil)
)

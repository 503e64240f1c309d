package linearmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Significance holds the per coefficient inference computed from the observed Fisher
// information of a fitted logistic regression. Slices follow the training column order.
type Significance struct {
	Coef              []float64   `json:"coefficients"`
	SigmaEstimates    []float64   `json:"sigma_estimates"`
	ZScores           []float64   `json:"z_scores"`
	PValues           []float64   `json:"p_values"`
	FisherInformation [][]float64 `json:"fisher_information"`
}

// InferenceLogisticRegression fits a LogisticRegression and then estimates the standard error,
// z-score and two tailed p-value of every coefficient. The covariance estimate is the inverse
// of F = X^T diag(w) X with w_i = 1 / (2 * (1 + cosh(s_i))) evaluated at the fitted decision
// scores s_i. The intercept is not part of F.
type InferenceLogisticRegression struct {
	*LogisticRegression

	sig *Significance
}

// NewInferenceLogisticRegression initializes the classifier with the given solver options
func NewInferenceLogisticRegression(opt *LogisticOptions) (*InferenceLogisticRegression, error) {
	lr, err := NewLogisticRegression(opt)
	if err != nil {
		return nil, err
	}
	return &InferenceLogisticRegression{LogisticRegression: lr}, nil
}

// Fit the underlying classifier and compute the significance report. Returns
// ErrSingularInformation if the Fisher information cannot be inverted.
func (r *InferenceLogisticRegression) Fit(x, y mat.Matrix) error {
	m, n, err := validateXY(x, y)
	if err != nil {
		return err
	}
	if m <= n {
		return fmt.Errorf("%d samples with %d features, %w", m, n, ErrInsufficientSamples)
	}
	r.sig = nil

	if err := r.LogisticRegression.Fit(x, y); err != nil {
		return err
	}

	scores, err := r.DecisionFunction(x)
	if err != nil {
		return err
	}

	fisher := FisherInformation(x, scores)
	cov, err := invertInformation(fisher)
	if err != nil {
		return err
	}

	coef := r.Coef()
	sig := &Significance{
		Coef:              coef,
		SigmaEstimates:    make([]float64, n),
		ZScores:           make([]float64, n),
		PValues:           make([]float64, n),
		FisherInformation: make([][]float64, n),
	}
	for j := 0; j < n; j++ {
		sigma := math.Sqrt(cov.At(j, j))
		sig.SigmaEstimates[j] = sigma
		sig.ZScores[j] = coef[j] / sigma
		sig.PValues[j] = TwoTailedPValue(sig.ZScores[j])

		row := make([]float64, n)
		for k := 0; k < n; k++ {
			row[k] = fisher.At(j, k)
		}
		sig.FisherInformation[j] = row
	}
	r.sig = sig
	return nil
}

// Significance returns a copy of the report from the last successful Fit
func (r *InferenceLogisticRegression) Significance() (*Significance, error) {
	if r.sig == nil {
		return nil, ErrNotFitted
	}
	out := &Significance{
		Coef:              append([]float64(nil), r.sig.Coef...),
		SigmaEstimates:    append([]float64(nil), r.sig.SigmaEstimates...),
		ZScores:           append([]float64(nil), r.sig.ZScores...),
		PValues:           append([]float64(nil), r.sig.PValues...),
		FisherInformation: make([][]float64, len(r.sig.FisherInformation)),
	}
	for i, row := range r.sig.FisherInformation {
		out.FisherInformation[i] = append([]float64(nil), row...)
	}
	return out, nil
}

// FisherInformation computes X^T diag(w) X where w_i = 1 / (2 * (1 + cosh(s_i))) is the
// Bernoulli variance p_i*(1-p_i) at decision score s_i.
func FisherInformation(x mat.Matrix, scores []float64) *mat.SymDense {
	m, n := x.Dims()
	weighted := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		w := 1.0 / (2.0 * (1.0 + math.Cosh(scores[i])))
		for j := 0; j < n; j++ {
			weighted.Set(i, j, x.At(i, j)*w)
		}
	}

	var full mat.Dense
	full.Mul(x.T(), weighted)

	fisher := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			fisher.SetSym(i, j, full.At(i, j))
		}
	}
	return fisher
}

// invertInformation returns the Cramer-Rao covariance estimate F^-1
func invertInformation(fisher *mat.SymDense) (*mat.SymDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(fisher); !ok {
		return nil, ErrSingularInformation
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return nil, fmt.Errorf("%v, %w", err, ErrSingularInformation)
	}
	n := cov.SymmetricDim()
	for j := 0; j < n; j++ {
		v := cov.At(j, j)
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("variance %v at coefficient %d, %w", v, j, ErrSingularInformation)
		}
	}
	return &cov, nil
}

// TwoTailedPValue returns 2 * (1 - Phi(|z|)) for a standard normal Phi
func TwoTailedPValue(z float64) float64 {
	return 2.0 * distuv.UnitNormal.Survival(math.Abs(z))
}

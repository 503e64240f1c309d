package linearmodel

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/aouyang1/go-mealclassifier/floatsunrolled"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const (
	PenaltyL2   = "l2"
	PenaltyNone = "none"

	DefaultC             = 1.0
	DefaultIterations    = 100
	DefaultGradTolerance = 1e-6
)

var (
	ErrNonPositiveC       = errors.New("inverse regularization strength must be positive")
	ErrNegativeIterations = errors.New("negative iterations")
	ErrNegativeTolerance  = errors.New("negative tolerance")
	ErrUnknownPenalty     = errors.New("unknown penalty")
)

// LogisticOptions represents input options to fit a binary logistic regression
type LogisticOptions struct {
	// Penalty is either "l2" or "none". The intercept is never penalized.
	Penalty string `json:"penalty"`

	// C is the inverse of the L2 regularization strength. Smaller values regularize more.
	C float64 `json:"c"`

	// Iterations is the maximum number of LBFGS major iterations.
	Iterations int `json:"iterations"`

	// GradTolerance stops the solver once the infinity norm of the gradient falls below it.
	GradTolerance float64 `json:"grad_tolerance"`

	// FitIntercept adds an unpenalized bias term to the decision function
	FitIntercept bool `json:"fit_intercept"`
}

// NewDefaultLogisticOptions returns an L2 penalized fit with C=1 and an intercept
func NewDefaultLogisticOptions() *LogisticOptions {
	return &LogisticOptions{
		Penalty:       PenaltyL2,
		C:             DefaultC,
		Iterations:    DefaultIterations,
		GradTolerance: DefaultGradTolerance,
		FitIntercept:  true,
	}
}

// Validate runs basic validation on logistic options, filling zero values with defaults
func (l *LogisticOptions) Validate() (*LogisticOptions, error) {
	if l == nil {
		return NewDefaultLogisticOptions(), nil
	}
	opt := *l

	switch opt.Penalty {
	case "":
		opt.Penalty = PenaltyL2
	case PenaltyL2, PenaltyNone:
	default:
		return nil, fmt.Errorf("%q, %w", opt.Penalty, ErrUnknownPenalty)
	}
	if opt.C < 0 {
		return nil, ErrNonPositiveC
	}
	if opt.C == 0 {
		opt.C = DefaultC
	}
	if opt.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if opt.Iterations == 0 {
		opt.Iterations = DefaultIterations
	}
	if opt.GradTolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	if opt.GradTolerance == 0 {
		opt.GradTolerance = DefaultGradTolerance
	}
	return &opt, nil
}

// LogisticRegression is a binary classifier minimizing the L2 penalized log loss
//
//	C * sum(log(1 + exp(s_i)) - y_i*s_i) + 0.5*||w||^2,  s_i = b + x_i.w
//
// with gonum's LBFGS.
type LogisticRegression struct {
	opt *LogisticOptions

	coef      []float64
	intercept float64
	fitted    bool
}

// NewLogisticRegression initializes a logistic regression ready for fitting
func NewLogisticRegression(opt *LogisticOptions) (*LogisticRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &LogisticRegression{
		opt: opt,
	}, nil
}

// Fit the classifier. y must be a single column of 0/1 labels containing both classes.
func (l *LogisticRegression) Fit(x, y mat.Matrix) error {
	if l.opt == nil {
		return ErrNoOptions
	}
	m, n, err := validateXY(x, y)
	if err != nil {
		return err
	}

	target := mat.Col(nil, 0, y)
	var positives int
	for i, v := range target {
		switch v {
		case 0:
		case 1:
			positives++
		default:
			return fmt.Errorf("row %d has target %v, %w", i, v, ErrNonBinaryTarget)
		}
	}
	if positives == 0 || positives == m {
		return ErrSingleClass
	}

	xcols := make([][]float64, n)
	for j := 0; j < n; j++ {
		xcols[j] = mat.Col(nil, j, x)
	}

	// parameter layout is [w_0 ... w_{n-1}, b]
	dim := n
	if l.opt.FitIntercept {
		dim++
	}
	penalty := 0.0
	if l.opt.Penalty == PenaltyL2 {
		penalty = 1.0
	}
	loss := l.opt.C
	if l.opt.Penalty == PenaltyNone {
		loss = 1.0
	}

	scores := make([]float64, m)
	resid := make([]float64, m)
	decision := func(beta []float64) {
		for i := range scores {
			scores[i] = 0.0
		}
		for j := 0; j < n; j++ {
			floatsunrolled.AddScaled(scores, beta[j], xcols[j])
		}
		if l.opt.FitIntercept {
			floats.AddConst(beta[n], scores)
		}
	}

	problem := optimize.Problem{
		Func: func(beta []float64) float64 {
			decision(beta)
			f := 0.0
			for i, s := range scores {
				f += softplus(s) - target[i]*s
			}
			f *= loss
			w := beta[:n]
			return f + 0.5*penalty*floats.Dot(w, w)
		},
		Grad: func(grad, beta []float64) {
			decision(beta)
			for i, s := range scores {
				resid[i] = loss * (sigmoid(s) - target[i])
			}
			for j := 0; j < n; j++ {
				grad[j] = floatsunrolled.Dot(resid, xcols[j]) + penalty*beta[j]
			}
			if l.opt.FitIntercept {
				grad[n] = floats.Sum(resid)
			}
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: l.opt.GradTolerance,
		MajorIterations:   l.opt.Iterations,
	}
	res, err := optimize.Minimize(problem, make([]float64, dim), settings, &optimize.LBFGS{})
	if err != nil {
		if res == nil || !converged(problem, res.X, l.opt.GradTolerance*float64(m)) {
			return fmt.Errorf("%v, %w", err, ErrNotConverged)
		}
		slog.Debug("accepting logistic fit after solver warning", "error", err.Error())
	}
	if res.Status == optimize.IterationLimit {
		slog.Warn("logistic regression reached iteration limit", "iterations", l.opt.Iterations)
	}

	beta := res.X
	l.coef = make([]float64, n)
	copy(l.coef, beta[:n])
	l.intercept = 0.0
	if l.opt.FitIntercept {
		l.intercept = beta[n]
	}
	l.fitted = true
	return nil
}

// converged reports whether the gradient at beta is small enough to accept a fit whose line
// search stalled at the optimum
func converged(p optimize.Problem, beta []float64, tol float64) bool {
	for _, b := range beta {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return false
		}
	}
	grad := make([]float64, len(beta))
	p.Grad(grad, beta)
	return floats.Norm(grad, math.Inf(1)) <= tol
}

// DecisionFunction returns the signed score b + x.w of every row before thresholding
func (l *LogisticRegression) DecisionFunction(x mat.Matrix) ([]float64, error) {
	if l.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if !l.fitted {
		return nil, ErrNotFitted
	}
	return linearPredictor(x, l.intercept, l.coef)
}

// PredictProba returns the probability of the positive class for every row
func (l *LogisticRegression) PredictProba(x mat.Matrix) ([]float64, error) {
	scores, err := l.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	for i, s := range scores {
		scores[i] = sigmoid(s)
	}
	return scores, nil
}

// Predict returns 1.0 for rows with a positive decision score and 0.0 otherwise
func (l *LogisticRegression) Predict(x mat.Matrix) ([]float64, error) {
	scores, err := l.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	for i, s := range scores {
		if s > 0 {
			scores[i] = 1.0
		} else {
			scores[i] = 0.0
		}
	}
	return scores, nil
}

// Score returns the fraction of rows whose predicted label matches y
func (l *LogisticRegression) Score(x, y mat.Matrix) (float64, error) {
	scores, err := l.ClassificationScores(x, y)
	if err != nil {
		return 0.0, err
	}
	return scores.Accuracy, nil
}

// ClassificationScores predicts every row of x and compares against the labels in y
func (l *LogisticRegression) ClassificationScores(x, y mat.Matrix) (*Scores, error) {
	if _, _, err := validateXY(x, y); err != nil {
		return nil, err
	}
	pred, err := l.Predict(x)
	if err != nil {
		return nil, err
	}
	return NewScores(pred, mat.Col(nil, 0, y))
}

// Intercept returns the fitted bias, 0.0 if FitIntercept is false
func (l *LogisticRegression) Intercept() float64 {
	return l.intercept
}

// Coef returns a copy of the fitted weights in the column order of the training matrix
func (l *LogisticRegression) Coef() []float64 {
	c := make([]float64, len(l.coef))
	copy(c, l.coef)
	return c
}

func sigmoid(s float64) float64 {
	if s >= 0 {
		return 1.0 / (1.0 + math.Exp(-s))
	}
	e := math.Exp(s)
	return e / (1.0 + e)
}

// softplus computes log(1 + exp(s)) without overflow
func softplus(s float64) float64 {
	if s > 0 {
		return s + math.Log1p(math.Exp(-s))
	}
	return math.Log1p(math.Exp(s))
}

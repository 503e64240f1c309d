package mealclassifier

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aouyang1/go-mealclassifier/combination"
	"github.com/aouyang1/go-mealclassifier/fped"
	"github.com/aouyang1/go-mealclassifier/linearmodel"
)

var (
	ErrNoVariables            = errors.New("no predictor variables configured")
	ErrNegativeSampleCount    = errors.New("sample counts must be non-negative")
	ErrInvalidTestRatio       = errors.New("test ratio must be within (0, 1)")
	ErrInvalidParallelization = errors.New("parallelization must be at least 1")
)

const (
	DefaultNonSeafoodSamples = 100
	DefaultSeafoodSamples    = 100
	DefaultTestRatio         = 0.2
	DefaultParallelization   = 1
)

// Options configures a variable subset evaluation
type Options struct {
	// Variables is the universe of predictor columns. Combinatorial mode evaluates every
	// non-empty subset of it, otherwise the list is evaluated as is.
	Variables     []string           `json:"variables"`
	Combinatorial bool               `json:"combinatorial"`
	Batch         *combination.Batch `json:"batch,omitempty"`

	NonSeafoodSamples int     `json:"non_seafood_samples"`
	SeafoodSamples    int     `json:"seafood_samples"`
	TestRatio         float64 `json:"test_ratio"`

	// Seed makes every subset draw reproducible. When nil a random seed is chosen per run
	// and reported on the results.
	Seed *uint64 `json:"seed,omitempty"`

	// PerSubsetRuntime records the runtime of each subset instead of stamping every row
	// with the cumulative runtime of the whole run.
	PerSubsetRuntime bool `json:"per_subset_runtime"`

	// Parallelization is the number of subsets evaluated concurrently
	Parallelization int `json:"parallelization"`

	SolverOptions *linearmodel.LogisticOptions `json:"solver_options"`
}

// NewDefaultOptions sweeps the exploratory variables combinatorially with 100 rows of each
// class and a 20% held out test set.
func NewDefaultOptions() *Options {
	return &Options{
		Variables:         fped.Exploratory(),
		Combinatorial:     true,
		NonSeafoodSamples: DefaultNonSeafoodSamples,
		SeafoodSamples:    DefaultSeafoodSamples,
		TestRatio:         DefaultTestRatio,
		Parallelization:   DefaultParallelization,
		SolverOptions:     linearmodel.NewDefaultLogisticOptions(),
	}
}

// Validate returns a copy of the options with defaults filled in for unset fields
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	opt := o.clone()
	if len(opt.Variables) == 0 {
		return nil, ErrNoVariables
	}
	if opt.NonSeafoodSamples < 0 || opt.SeafoodSamples < 0 {
		return nil, fmt.Errorf("got %d non-seafood and %d seafood, %w", opt.NonSeafoodSamples, opt.SeafoodSamples, ErrNegativeSampleCount)
	}
	if opt.TestRatio == 0 {
		opt.TestRatio = DefaultTestRatio
	}
	if !(opt.TestRatio > 0 && opt.TestRatio < 1) {
		return nil, fmt.Errorf("got %v, %w", opt.TestRatio, ErrInvalidTestRatio)
	}
	if opt.Parallelization == 0 {
		opt.Parallelization = DefaultParallelization
	}
	if opt.Parallelization < 0 {
		return nil, fmt.Errorf("got %d, %w", opt.Parallelization, ErrInvalidParallelization)
	}
	if err := opt.Batch.Validate(); err != nil {
		return nil, err
	}

	solver, err := opt.SolverOptions.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid solver options, %w", err)
	}
	opt.SolverOptions = solver
	return opt, nil
}

// clone deep copies the options without validating them
func (o *Options) clone() *Options {
	opt := *o
	opt.Variables = slices.Clone(o.Variables)
	if o.Batch != nil {
		batch := *o.Batch
		opt.Batch = &batch
	}
	if o.Seed != nil {
		seed := *o.Seed
		opt.Seed = &seed
	}
	if o.SolverOptions != nil {
		solver := *o.SolverOptions
		opt.SolverOptions = &solver
	}
	return &opt
}

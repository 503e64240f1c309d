// Package mealclassifier ranks combinations of dietary variables by how well a logistic
// regression on them predicts whether a meal contained seafood.
package mealclassifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/aouyang1/go-mealclassifier/combination"
	"github.com/aouyang1/go-mealclassifier/dataset"
	"github.com/aouyang1/go-mealclassifier/linearmodel"
	"golang.org/x/sync/errgroup"
)

var ErrNoDataset = errors.New("no dataset or uninitialized")

// Evaluator scores how well each subset of predictor variables separates seafood meals from
// non-seafood meals using a logistic regression trained on a balanced random sample.
type Evaluator struct {
	opt *Options
}

// New creates an Evaluator from the provided options. If no options are provided a default is used.
func New(opt *Options) (*Evaluator, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize evaluator, %w", err)
	}
	return &Evaluator{opt: opt}, nil
}

// Options returns a copy of the validated options in use
func (e *Evaluator) Options() *Options {
	return e.opt.clone()
}

// Evaluate trains and scores one classifier per planned subset. Rows are returned in sweep
// order regardless of parallelization.
func (e *Evaluator) Evaluate(ctx context.Context, ds *dataset.Dataset) (*Results, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	start := time.Now()

	if err := ds.ValidateSubset(e.opt.Variables); err != nil {
		return nil, fmt.Errorf("invalid variables for dataset, %w", err)
	}
	plan, err := combination.Plan(e.opt.Variables, e.opt.Combinatorial, e.opt.Batch)
	if err != nil {
		return nil, fmt.Errorf("unable to plan subsets, %w", err)
	}

	seed := e.seed()
	neg, pos := ds.ClassCounts()
	slog.Info("evaluating variable subsets",
		"subsets", len(plan),
		"variables", len(e.opt.Variables),
		"combinatorial", e.opt.Combinatorial,
		"non_seafood_rows", neg,
		"seafood_rows", pos,
		"seed", seed,
	)

	rows := make([]ResultRow, len(plan))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opt.Parallelization)
	for i, subset := range plan {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			subsetStart := time.Now()
			scores, err := e.evaluateSubset(ds, subset, seed)
			if err != nil {
				return fmt.Errorf("subset %d %v, %w", subset.Index, subset.Vars, err)
			}
			rows[i] = ResultRow{
				Index:          subset.Index,
				Vars:           subset.Vars,
				SuccessRate:    scores.Accuracy,
				RuntimeSeconds: time.Since(subsetStart).Seconds(),
				Scores:         scores,
			}
			slog.Debug("evaluated subset", "index", subset.Index, "vars", subset.Vars, "success_rate", scores.Accuracy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start).Seconds()
	if !e.opt.PerSubsetRuntime {
		for i := range rows {
			rows[i].RuntimeSeconds = elapsed
		}
	}
	slog.Info("finished evaluating variable subsets", "subsets", len(rows), "runtime_seconds", elapsed)

	return &Results{
		Variables:      slices.Clone(e.opt.Variables),
		Seed:           seed,
		RuntimeSeconds: elapsed,
		Rows:           rows,
	}, nil
}

// evaluateSubset draws a balanced sample, splits it, fits on the train rows and returns the
// scores on the test rows. The random source depends only on the seed and the subset's
// sweep index so batched runs draw the same rows as an unbatched run.
func (e *Evaluator) evaluateSubset(ds *dataset.Dataset, subset combination.Subset, seed uint64) (*linearmodel.Scores, error) {
	src := rand.NewPCG(seed, uint64(subset.Index))

	sample, err := ds.BalancedSample(src, e.opt.NonSeafoodSamples, e.opt.SeafoodSamples)
	if err != nil {
		return nil, fmt.Errorf("unable to draw balanced sample, %w", err)
	}
	train, test, err := dataset.TrainTestSplit(src, sample, e.opt.TestRatio)
	if err != nil {
		return nil, fmt.Errorf("unable to split sample, %w", err)
	}

	xTrain, yTrain, err := ds.Matrices(train, subset.Vars)
	if err != nil {
		return nil, fmt.Errorf("unable to build training matrices, %w", err)
	}
	xTest, yTest, err := ds.Matrices(test, subset.Vars)
	if err != nil {
		return nil, fmt.Errorf("unable to build test matrices, %w", err)
	}

	clf, err := linearmodel.NewLogisticRegression(e.opt.SolverOptions)
	if err != nil {
		return nil, err
	}
	if err := clf.Fit(xTrain, yTrain); err != nil {
		return nil, fmt.Errorf("unable to fit classifier, %w", err)
	}
	return clf.ClassificationScores(xTest, yTest)
}

func (e *Evaluator) seed() uint64 {
	if e.opt.Seed != nil {
		return *e.opt.Seed
	}
	return rand.Uint64()
}

package mealclassifier

import (
	"context"
	"testing"

	"github.com/aouyang1/go-mealclassifier/combination"
	"github.com/aouyang1/go-mealclassifier/dataset"
	"github.com/aouyang1/go-mealclassifier/fped"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClasses(t *testing.T, names []string, shift []float64, nNeg, nPos int) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.GenerateClasses(names, shift, nNeg, nPos, fped.LabelSeafoodMeal, 11)
	require.Nil(t, err)
	return ds
}

func seedPtr(seed uint64) *uint64 {
	return &seed
}

func accuracies(rows []ResultRow) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row.SuccessRate
	}
	return out
}

func TestEvaluateCombinatorial(t *testing.T) {
	ds := setupClasses(t, []string{"A", "B"}, []float64{1.0, 0.5}, 2000, 2000)

	e, err := New(&Options{
		Variables:         []string{"A", "B"},
		Combinatorial:     true,
		NonSeafoodSamples: 100,
		SeafoodSamples:    100,
		TestRatio:         0.2,
		Seed:              seedPtr(7),
	})
	require.Nil(t, err)

	res, err := e.Evaluate(context.Background(), ds)
	require.Nil(t, err)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, uint64(7), res.Seed)
	assert.Equal(t, []string{"A", "B"}, res.Variables)

	expected := [][]string{{"A"}, {"B"}, {"A", "B"}}
	for i, row := range res.Rows {
		assert.Equal(t, i, row.Index)
		assert.Equal(t, expected[i], row.Vars)
		assert.GreaterOrEqual(t, row.SuccessRate, 0.0)
		assert.LessOrEqual(t, row.SuccessRate, 1.0)

		// run level runtime is stamped on every row
		assert.Equal(t, res.RuntimeSeconds, row.RuntimeSeconds)
	}
	assert.Greater(t, res.RuntimeSeconds, 0.0)
}

func TestEvaluateSeparable(t *testing.T) {
	ds := setupClasses(t, []string{"A", "B"}, []float64{20.0, 20.0}, 500, 500)

	e, err := New(&Options{
		Variables:         []string{"A", "B"},
		Combinatorial:     true,
		NonSeafoodSamples: 100,
		SeafoodSamples:    100,
		Seed:              seedPtr(3),
	})
	require.Nil(t, err)

	res, err := e.Evaluate(context.Background(), ds)
	require.Nil(t, err)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, []string{"A", "B"}, res.Rows[2].Vars)
	assert.Equal(t, []float64{1.0, 1.0, 1.0}, accuracies(res.Rows))
}

func TestEvaluateBatchesMatchFullSweep(t *testing.T) {
	vars := []string{"A", "B", "C"}
	ds := setupClasses(t, vars, []float64{1.0, 0.5, 0.0}, 1000, 1000)

	opt := &Options{
		Variables:         vars,
		Combinatorial:     true,
		NonSeafoodSamples: 100,
		SeafoodSamples:    100,
		Seed:              seedPtr(42),
	}
	e, err := New(opt)
	require.Nil(t, err)
	full, err := e.Evaluate(context.Background(), ds)
	require.Nil(t, err)
	require.Len(t, full.Rows, 7)

	batches := make([]*Results, 0, 2)
	for step := 0; step < 2; step++ {
		batchOpt := *opt
		batchOpt.Batch = &combination.Batch{Num: 2, Step: step, AbsorbRemainder: true}
		e, err := New(&batchOpt)
		require.Nil(t, err)
		res, err := e.Evaluate(context.Background(), ds)
		require.Nil(t, err)
		batches = append(batches, res)
	}
	assert.Len(t, batches[0].Rows, 3)
	assert.Len(t, batches[1].Rows, 4)

	merged, err := MergeResults(batches...)
	require.Nil(t, err)
	require.Len(t, merged.Rows, 7)
	for i := range full.Rows {
		assert.Equal(t, full.Rows[i].Index, merged.Rows[i].Index)
		assert.Equal(t, full.Rows[i].Vars, merged.Rows[i].Vars)
	}
	assert.Equal(t, accuracies(full.Rows), accuracies(merged.Rows))
}

func TestEvaluateParallelMatchesSerial(t *testing.T) {
	vars := []string{"A", "B", "C"}
	ds := setupClasses(t, vars, []float64{1.0, 0.5, 0.25}, 1000, 1000)

	testData := map[string]struct {
		parallelization int
	}{
		"serial":   {1},
		"parallel": {4},
	}

	var expected []float64
	for _, name := range []string{"serial", "parallel"} {
		td := testData[name]
		t.Run(name, func(t *testing.T) {
			e, err := New(&Options{
				Variables:         vars,
				Combinatorial:     true,
				NonSeafoodSamples: 100,
				SeafoodSamples:    100,
				Seed:              seedPtr(5),
				Parallelization:   td.parallelization,
				PerSubsetRuntime:  true,
			})
			require.Nil(t, err)
			res, err := e.Evaluate(context.Background(), ds)
			require.Nil(t, err)
			require.Len(t, res.Rows, 7)
			for _, row := range res.Rows {
				assert.LessOrEqual(t, row.RuntimeSeconds, res.RuntimeSeconds)
			}

			if expected == nil {
				expected = accuracies(res.Rows)
				return
			}
			assert.Equal(t, expected, accuracies(res.Rows))
		})
	}
}

func TestEvaluateNonCombinatorial(t *testing.T) {
	ds := setupClasses(t, []string{"A", "B", "C"}, []float64{1.0, 1.0, 1.0}, 500, 500)

	e, err := New(&Options{
		Variables:         []string{"C", "A"},
		Combinatorial:     false,
		NonSeafoodSamples: 100,
		SeafoodSamples:    100,
		Seed:              seedPtr(1),
	})
	require.Nil(t, err)

	res, err := e.Evaluate(context.Background(), ds)
	require.Nil(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"C", "A"}, res.Rows[0].Vars)
	assert.Greater(t, res.Rows[0].SuccessRate, 0.5)
}

func TestEvaluateErrors(t *testing.T) {
	ds := setupClasses(t, []string{"A", "B"}, []float64{1.0, 1.0}, 50, 50)

	testData := map[string]struct {
		opt *Options
		ds  *dataset.Dataset
		ctx func() context.Context
		err error
	}{
		"no dataset": {
			opt: &Options{Variables: []string{"A"}, NonSeafoodSamples: 10, SeafoodSamples: 10},
			ds:  nil,
			err: ErrNoDataset,
		},
		"insufficient population": {
			opt: &Options{Variables: []string{"A"}, Combinatorial: true, NonSeafoodSamples: 100, SeafoodSamples: 100},
			ds:  ds,
			err: dataset.ErrInsufficientPopulation,
		},
		"unknown variable": {
			opt: &Options{Variables: []string{"A", "Z"}, Combinatorial: true, NonSeafoodSamples: 10, SeafoodSamples: 10},
			ds:  ds,
			err: dataset.ErrUnknownColumn,
		},
		"label as predictor": {
			opt: &Options{Variables: []string{fped.LabelSeafoodMeal}, NonSeafoodSamples: 10, SeafoodSamples: 10},
			ds:  ds,
			err: dataset.ErrLabelInSubset,
		},
		"canceled": {
			opt: &Options{Variables: []string{"A", "B"}, Combinatorial: true, NonSeafoodSamples: 10, SeafoodSamples: 10},
			ds:  ds,
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			err: context.Canceled,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			e, err := New(td.opt)
			require.Nil(t, err)

			ctx := context.Background()
			if td.ctx != nil {
				ctx = td.ctx()
			}
			_, err = e.Evaluate(ctx, td.ds)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *Options
		expected *Options
		err      error
	}{
		"nil": {
			opt:      nil,
			expected: NewDefaultOptions(),
		},
		"fill defaults": {
			opt: &Options{Variables: []string{"A"}},
			expected: &Options{
				Variables:       []string{"A"},
				TestRatio:       DefaultTestRatio,
				Parallelization: DefaultParallelization,
				SolverOptions:   NewDefaultOptions().SolverOptions,
			},
		},
		"no variables": {
			opt: &Options{},
			err: ErrNoVariables,
		},
		"negative samples": {
			opt: &Options{Variables: []string{"A"}, SeafoodSamples: -1},
			err: ErrNegativeSampleCount,
		},
		"test ratio too large": {
			opt: &Options{Variables: []string{"A"}, TestRatio: 1.0},
			err: ErrInvalidTestRatio,
		},
		"negative parallelization": {
			opt: &Options{Variables: []string{"A"}, Parallelization: -1},
			err: ErrInvalidParallelization,
		},
		"invalid batch": {
			opt: &Options{Variables: []string{"A"}, Batch: &combination.Batch{Num: 2, Step: 2}},
			err: combination.ErrInvalidBatchStep,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestOptionsValidateCopies(t *testing.T) {
	opt := &Options{
		Variables: []string{"A", "B"},
		Batch:     &combination.Batch{Num: 2, Step: 1},
		Seed:      seedPtr(9),
	}
	res, err := opt.Validate()
	require.Nil(t, err)

	res.Variables[0] = "Z"
	res.Batch.Step = 0
	*res.Seed = 10
	assert.Equal(t, "A", opt.Variables[0])
	assert.Equal(t, 1, opt.Batch.Step)
	assert.Equal(t, uint64(9), *opt.Seed)
}

func TestEvaluatorOptionsCopies(t *testing.T) {
	e, err := New(&Options{
		Variables: []string{"A", "B"},
		Batch:     &combination.Batch{Num: 2, Step: 1},
		Seed:      seedPtr(9),
	})
	require.Nil(t, err)

	res := e.Options()
	require.NotNil(t, res.SolverOptions)
	res.Variables[0] = "Z"
	res.Batch.Step = 0
	*res.Seed = 10
	res.SolverOptions.C = 100

	opt := e.Options()
	assert.Equal(t, []string{"A", "B"}, opt.Variables)
	assert.Equal(t, 1, opt.Batch.Step)
	assert.Equal(t, uint64(9), *opt.Seed)
	assert.Equal(t, NewDefaultOptions().SolverOptions, opt.SolverOptions)
	assert.Equal(t, DefaultTestRatio, opt.TestRatio)
}

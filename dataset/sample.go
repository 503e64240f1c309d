package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/sampleuv"
)

var (
	ErrInsufficientPopulation = errors.New("requested sample exceeds class population")
	ErrNegativeSampleSize     = errors.New("negative sample size")
	ErrInvalidTestRatio       = errors.New("test ratio must be within (0, 1)")
	ErrEmptyPartition         = errors.New("split leaves an empty train or test partition")
)

// BalancedSample draws nNeg rows labelled 0 and nPos rows labelled 1, each uniformly without
// replacement, and returns the negative rows followed by the positive rows. Counts are
// absolute and independent of the class prevalence.
func (ds *Dataset) BalancedSample(src rand.Source, nNeg, nPos int) ([]int, error) {
	if nNeg < 0 || nPos < 0 {
		return nil, ErrNegativeSampleSize
	}
	neg, err := sampleClass(src, ds.ClassRows(0), nNeg)
	if err != nil {
		return nil, fmt.Errorf("non-seafood class, %w", err)
	}
	pos, err := sampleClass(src, ds.ClassRows(1), nPos)
	if err != nil {
		return nil, fmt.Errorf("seafood class, %w", err)
	}
	return append(neg, pos...), nil
}

func sampleClass(src rand.Source, population []int, n int) ([]int, error) {
	if n > len(population) {
		return nil, fmt.Errorf("requested %d rows from %d, %w", n, len(population), ErrInsufficientPopulation)
	}
	if n == 0 {
		return []int{}, nil
	}
	idxs := make([]int, n)
	sampleuv.WithoutReplacement(idxs, len(population), src)

	rows := make([]int, n)
	for i, idx := range idxs {
		rows[i] = population[idx]
	}
	return rows, nil
}

// TrainTestSplit shuffles rows and holds out ceil(testRatio * len(rows)) of them for testing.
// rows is not modified.
func TrainTestSplit(src rand.Source, rows []int, testRatio float64) ([]int, []int, error) {
	if !(testRatio > 0 && testRatio < 1) {
		return nil, nil, fmt.Errorf("got %v, %w", testRatio, ErrInvalidTestRatio)
	}
	n := len(rows)
	nTest := int(math.Ceil(testRatio * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain <= 0 {
		return nil, nil, fmt.Errorf("%d rows with test ratio %v, %w", n, testRatio, ErrEmptyPartition)
	}

	perm := rand.New(src).Perm(n)
	test := make([]int, nTest)
	train := make([]int, nTrain)
	for i, p := range perm {
		if i < nTest {
			test[i] = rows[p]
			continue
		}
		train[i-nTest] = rows[p]
	}
	return train, test, nil
}

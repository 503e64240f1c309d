package linearmodel

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoOptions           = errors.New("no initialized model options")
	ErrTargetLenMismatch   = errors.New("target length does not match target rows")
	ErrNoTrainingMatrix    = errors.New("no training matrix")
	ErrNoTargetMatrix      = errors.New("no target matrix")
	ErrNoDesignMatrix      = errors.New("no design matrix for inference")
	ErrFeatureLenMismatch  = errors.New("number of features does not match number of model coefficients")
	ErrNotFitted           = errors.New("model has not been fit")
	ErrNonBinaryTarget     = errors.New("target values must be 0 or 1")
	ErrSingleClass         = errors.New("target contains a single class")
	ErrNotConverged        = errors.New("solver did not converge")
	ErrSingularInformation = errors.New("fisher information matrix is singular")
	ErrInsufficientSamples = errors.New("number of samples must exceed number of features")
)

// validateXY checks the training inputs shared by every fit
func validateXY(x, y mat.Matrix) (int, int, error) {
	if x == nil {
		return 0, 0, ErrNoTrainingMatrix
	}
	if y == nil {
		return 0, 0, ErrNoTargetMatrix
	}
	m, n := x.Dims()
	ym, _ := y.Dims()
	if ym != m {
		return 0, 0, fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}
	return m, n, nil
}

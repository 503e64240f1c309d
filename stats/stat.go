package stats

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/aouyang1/go-mealclassifier/linearmodel"
	mat_ "github.com/aouyang1/go-mealclassifier/mat"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrMinimumFeatures    = errors.New("need at least 2 features to compute VIF")
	ErrFeatureLenMismatch = errors.New("some feature length is not consistent")
	ErrFeatureLen         = errors.New("must have at least 2 points per feature")
	ErrNoValues           = errors.New("no values to summarize")
)

// VarianceInflationFactor regresses each feature on all of the others and returns
// 1 / (1 - R^2) per feature in the same order as the input. Exactly collinear features
// return +Inf.
func VarianceInflationFactor(features [][]float64) ([]float64, error) {
	if len(features) < 2 {
		return nil, ErrMinimumFeatures
	}
	m := len(features[0])
	for i, feature := range features {
		if len(feature) < 2 {
			return nil, ErrFeatureLen
		}
		if len(feature) != m {
			return nil, fmt.Errorf("feature %d has %d points instead of %d, %w", i, len(feature), m, ErrFeatureLenMismatch)
		}
	}

	x, err := mat_.NewDenseFromColumns(features)
	if err != nil {
		return nil, err
	}

	vif := make([]float64, len(features))
	for i, feature := range features {
		others, err := mat_.DropColumn(x, i)
		if err != nil {
			return nil, err
		}
		y := mat.NewDense(m, 1, feature)

		reg, err := linearmodel.NewOLSRegression(nil)
		if err != nil {
			return nil, err
		}
		if err := reg.Fit(others, y); err != nil {
			slog.Debug("collinear feature, unable to regress on the others", "feature", i, "error", err.Error())
			vif[i] = math.Inf(1)
			continue
		}
		r2, err := reg.Score(others, y)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(r2) || r2 >= 1.0 {
			vif[i] = math.Inf(1)
			continue
		}
		vif[i] = 1.0 / (1.0 - r2)
	}
	return vif, nil
}

// Summary describes the spread of a set of scores
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize returns the count, mean, sample standard deviation, min and max of the values
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrNoValues
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0.0
	}
	s := Summary{
		Count:  len(values),
		Mean:   mean,
		StdDev: std,
		Min:    math.Inf(1),
		Max:    math.Inf(-1),
	}
	for _, v := range values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	return s, nil
}

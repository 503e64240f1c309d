package mealclassifier

import (
	"bytes"
	"testing"

	"github.com/aouyang1/go-mealclassifier/dataset"
	"github.com/aouyang1/go-mealclassifier/fped"
	"github.com/aouyang1/go-mealclassifier/linearmodel"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignificance(t *testing.T) {
	ds := setupClasses(t, []string{"A", "B"}, []float64{2.0, 0.0}, 2000, 2000)

	report, err := Significance(ds, &Options{
		Variables:         []string{"A", "B"},
		NonSeafoodSamples: 500,
		SeafoodSamples:    500,
		Seed:              seedPtr(21),
	})
	require.Nil(t, err)

	assert.Equal(t, uint64(21), report.Seed)
	assert.Equal(t, 1000, report.Samples)
	assert.Equal(t, []string{"A", "B"}, report.Variables())
	require.NotNil(t, report.TrainingScores)
	assert.Greater(t, report.TrainingScores.Accuracy, 0.75)
	require.Len(t, report.Coefficients, 2)
	require.Len(t, report.FisherInformation, 2)

	informative := report.Coefficients[0]
	assert.Greater(t, informative.Coef, 0.0)
	assert.Greater(t, informative.Sigma, 0.0)
	assert.Less(t, informative.PValue, 1e-6)

	noise := report.Coefficients[1]
	assert.Greater(t, noise.PValue, 1e-4)

	for _, c := range report.Coefficients {
		require.NotNil(t, c.VIF)
		assert.InDelta(t, 1.0, *c.VIF, 0.2)
		assert.InDelta(t, c.Coef/c.Sigma, c.ZScore, 1e-9)
	}

	// same seed draws the same sample
	again, err := Significance(ds, &Options{
		Variables:         []string{"A", "B"},
		NonSeafoodSamples: 500,
		SeafoodSamples:    500,
		Seed:              seedPtr(21),
	})
	require.Nil(t, err)
	assert.Equal(t, report, again)
}

func TestSignificanceSingleVariable(t *testing.T) {
	ds := setupClasses(t, []string{"A"}, []float64{1.0}, 500, 500)

	report, err := Significance(ds, &Options{
		Variables:         []string{"A"},
		NonSeafoodSamples: 200,
		SeafoodSamples:    200,
		Seed:              seedPtr(2),
	})
	require.Nil(t, err)
	require.Len(t, report.Coefficients, 1)
	require.NotNil(t, report.Coefficients[0].VIF)
	assert.Equal(t, 1.0, *report.Coefficients[0].VIF)
}

func TestSignificanceSingular(t *testing.T) {
	n := 400
	a := make([]float64, n)
	zero := make([]float64, n)
	label := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = float64(i%7) - 3.0
		if i%2 == 1 {
			label[i] = 1.0
			a[i] += 1.0
		}
	}
	ds, err := dataset.NewDataset(
		[]string{"A", "Z", fped.LabelSeafoodMeal},
		[][]float64{a, zero, label},
		fped.LabelSeafoodMeal,
	)
	require.Nil(t, err)

	_, err = Significance(ds, &Options{
		Variables:         []string{"A", "Z"},
		NonSeafoodSamples: 100,
		SeafoodSamples:    100,
		Seed:              seedPtr(4),
	})
	assert.ErrorIs(t, err, linearmodel.ErrSingularInformation)
}

func TestSignificanceErrors(t *testing.T) {
	ds := setupClasses(t, []string{"A"}, []float64{1.0}, 50, 50)

	_, err := Significance(nil, nil)
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = Significance(ds, &Options{Variables: []string{"Q"}, NonSeafoodSamples: 10, SeafoodSamples: 10})
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)

	_, err = Significance(ds, &Options{Variables: []string{"A"}, NonSeafoodSamples: 100, SeafoodSamples: 10})
	assert.ErrorIs(t, err, dataset.ErrInsufficientPopulation)

	_, err = Significance(ds, &Options{Variables: []string{"A"}, NonSeafoodSamples: 1, SeafoodSamples: 0})
	assert.ErrorIs(t, err, linearmodel.ErrInsufficientSamples)
}

func TestSignificanceReportOutput(t *testing.T) {
	vif := 1.25
	report := &SignificanceReport{
		Seed:      1,
		Samples:   200,
		Intercept: 0.5,
		TrainingScores: &linearmodel.Scores{
			Accuracy:  0.75,
			Precision: 0.8,
			Recall:    0.7,
			F1:        0.74667,
		},
		Coefficients: []CoefficientSignificance{
			{Variable: "A", Coef: 1.0, Sigma: 0.1, ZScore: 10.0, PValue: 0.0, VIF: &vif},
			{Variable: "B", Coef: 0.1, Sigma: 0.2, ZScore: 0.5, PValue: 0.617, VIF: nil},
		},
		FisherInformation: [][]float64{{1, 0}, {0, 1}},
	}

	var buf bytes.Buffer
	require.Nil(t, report.TablePrint(&buf, "", "  "))
	out := buf.String()
	assert.Contains(t, out, "Significance:\n")
	assert.Contains(t, out, "  Samples: 200    Seed: 1    Intercept: 0.50000\n")
	assert.Contains(t, out, "  Accuracy: 0.750    Precision: 0.800    Recall: 0.700    F1: 0.747\n")
	assert.Contains(t, out, "Variable")
	assert.Contains(t, out, "1.250")
	assert.Contains(t, out, "Inf")

	buf.Reset()
	require.Nil(t, report.WriteJSON(&buf))
	var parsed SignificanceReport
	require.Nil(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, report, &parsed)
}

package mealclassifier

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"text/tabwriter"

	"github.com/aouyang1/go-mealclassifier/dataset"
	"github.com/aouyang1/go-mealclassifier/linearmodel"
	"github.com/aouyang1/go-mealclassifier/stats"
	"github.com/goccy/go-json"
)

// CoefficientSignificance is the inference for a single predictor. VIF is nil when the
// predictor is an exact linear combination of the others.
type CoefficientSignificance struct {
	Variable string   `json:"variable"`
	Coef     float64  `json:"coef"`
	Sigma    float64  `json:"sigma"`
	ZScore   float64  `json:"z_score"`
	PValue   float64  `json:"p_value"`
	VIF      *float64 `json:"vif"`
}

// SignificanceReport is the result of fitting the inference classifier on one balanced sample
type SignificanceReport struct {
	Seed              uint64                    `json:"seed"`
	Samples           int                       `json:"samples"`
	Intercept         float64                   `json:"intercept"`
	TrainingScores    *linearmodel.Scores       `json:"training_scores"`
	Coefficients      []CoefficientSignificance `json:"coefficients"`
	FisherInformation [][]float64               `json:"fisher_information"`
}

// Significance fits the inference classifier on a balanced sample of the literal variable
// list in opt and reports the standard error, z-score, two tailed p-value and variance
// inflation factor of every coefficient. Combinatorial, Batch and TestRatio are ignored.
func Significance(ds *dataset.Dataset, opt *Options) (*SignificanceReport, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	vars := opt.Variables
	if err := ds.ValidateSubset(vars); err != nil {
		return nil, fmt.Errorf("invalid variables for dataset, %w", err)
	}

	seed := rand.Uint64()
	if opt.Seed != nil {
		seed = *opt.Seed
	}
	src := rand.NewPCG(seed, 0)
	rows, err := ds.BalancedSample(src, opt.NonSeafoodSamples, opt.SeafoodSamples)
	if err != nil {
		return nil, fmt.Errorf("unable to draw balanced sample, %w", err)
	}
	x, y, err := ds.Matrices(rows, vars)
	if err != nil {
		return nil, err
	}

	clf, err := linearmodel.NewInferenceLogisticRegression(opt.SolverOptions)
	if err != nil {
		return nil, err
	}
	if err := clf.Fit(x, y); err != nil {
		return nil, fmt.Errorf("unable to fit inference classifier, %w", err)
	}
	sig, err := clf.Significance()
	if err != nil {
		return nil, err
	}
	scores, err := clf.ClassificationScores(x, y)
	if err != nil {
		return nil, err
	}

	vif, err := varianceInflation(len(vars), func(j int) []float64 {
		col := make([]float64, len(rows))
		for i := range rows {
			col[i] = x.At(i, j)
		}
		return col
	})
	if err != nil {
		return nil, err
	}

	report := &SignificanceReport{
		Seed:              seed,
		Samples:           len(rows),
		Intercept:         clf.Intercept(),
		TrainingScores:    scores,
		Coefficients:      make([]CoefficientSignificance, len(vars)),
		FisherInformation: sig.FisherInformation,
	}
	for j, v := range vars {
		report.Coefficients[j] = CoefficientSignificance{
			Variable: v,
			Coef:     sig.Coef[j],
			Sigma:    sig.SigmaEstimates[j],
			ZScore:   sig.ZScores[j],
			PValue:   sig.PValues[j],
			VIF:      vif[j],
		}
	}
	slog.Info("fit inference classifier", "variables", len(vars), "samples", len(rows), "seed", seed)
	return report, nil
}

func varianceInflation(n int, column func(int) []float64) ([]*float64, error) {
	out := make([]*float64, n)
	if n == 1 {
		one := 1.0
		out[0] = &one
		return out, nil
	}
	features := make([][]float64, n)
	for j := range features {
		features[j] = column(j)
	}
	vif, err := stats.VarianceInflationFactor(features)
	if err != nil {
		return nil, fmt.Errorf("unable to compute variance inflation factors, %w", err)
	}
	for j, v := range vif {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		out[j] = &vif[j]
	}
	return out, nil
}

// Variables returns the predictor names in fit order
func (s *SignificanceReport) Variables() []string {
	vars := make([]string, len(s.Coefficients))
	for i, c := range s.Coefficients {
		vars[i] = c.Variable
	}
	return vars
}

// TablePrint writes the intercept and a coefficient table
func (s *SignificanceReport) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sSignificance:\n", prefix, indentExpand(indent, 0)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sSamples: %d    Seed: %d    Intercept: %.5f\n",
		prefix, indentExpand(indent, 1),
		s.Samples, s.Seed, s.Intercept,
	); err != nil {
		return err
	}
	if s.TrainingScores != nil {
		if _, err := fmt.Fprintf(w, "%s%sAccuracy: %.3f    Precision: %.3f    Recall: %.3f    F1: %.3f\n",
			prefix, indentExpand(indent, 1),
			s.TrainingScores.Accuracy,
			s.TrainingScores.Precision,
			s.TrainingScores.Recall,
			s.TrainingScores.F1,
		); err != nil {
			return err
		}
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s%sVariable\tCoef\tSigma\tZ\tP\tVIF\t\n", prefix, indentExpand(indent, 1))
	for _, c := range s.Coefficients {
		vif := "Inf"
		if c.VIF != nil {
			vif = fmt.Sprintf("%.3f", *c.VIF)
		}
		fmt.Fprintf(tbl, "%s%s%s\t%.5f\t%.5f\t%.3f\t%.5f\t%s\t\n",
			prefix, indentExpand(indent, 1),
			c.Variable, c.Coef, c.Sigma, c.ZScore, c.PValue, vif)
	}
	return tbl.Flush()
}

// WriteJSON writes the report as indented json
func (s *SignificanceReport) WriteJSON(w io.Writer) error {
	bytes, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(bytes)
	return err
}

func indentExpand(indent string, growth int) string {
	indentByte := []byte(indent)
	out := make([]byte, 0, len(indent)*growth)
	for i := 0; i < growth; i++ {
		out = append(out, indentByte...)
	}
	return string(out)
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	mealclassifier "github.com/aouyang1/go-mealclassifier"
	"github.com/aouyang1/go-mealclassifier/combination"
	"github.com/aouyang1/go-mealclassifier/dataset"
	"github.com/aouyang1/go-mealclassifier/fped"
	"github.com/spf13/cobra"
)

var ErrInvalidArgs = errors.New("expected no arguments or <batch_step> <batch_num>")

const (
	defaultInput       = "../Data/nhanes_full_pre_proc.csv"
	defaultOutput      = "model_res_df.csv"
	batchInput         = "nhanes_full_pre_proc.csv"
	batchOutputPattern = "model_res_df_%d.csv"
	batchSamples       = 1000
)

var (
	evalFlags            optionFlags
	evalOutput           string
	evalPlot             string
	evalPlotTop          int
	evalJSON             string
	evalCombinatorial    bool
	evalAbsorbRemainder  bool
	evalPerSubsetRuntime bool
	evalParallel         int
	evalTestRatio        float64
	evalBest             int
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [<batch_step> <batch_num>]",
	Short: "Score every combination of FPED variables",
	Long: `Fit a logistic regression per variable subset on a balanced sample of meals and record the
held out accuracy.

With no arguments the exploratory variables are read from ../Data/nhanes_full_pre_proc.csv with
100 meals of each class and written to model_res_df.csv. With <batch_step> <batch_num> only that
slice of the power set is evaluated from nhanes_full_pre_proc.csv with 1000 meals of each class
and written to model_res_df_<batch_step>.csv.

Examples:
  fpedselect evaluate
  fpedselect evaluate 0 8 --seed 42
  fpedselect evaluate --variables level1 --plot accuracy.html`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("got %d arguments, %w", len(args), ErrInvalidArgs)
		}
		return nil
	},
	RunE: runEvaluate,
}

func init() {
	evalFlags.bind(evaluateCmd)
	evaluateCmd.Flags().StringVarP(&evalOutput, "output", "o", "", "Output csv path")
	evaluateCmd.Flags().StringVar(&evalPlot, "plot", "", "Write an html accuracy chart to this path")
	evaluateCmd.Flags().IntVar(&evalPlotTop, "plot-top", mealclassifier.DefaultPlotTop, "Number of best subsets in the chart, 0 for all")
	evaluateCmd.Flags().StringVar(&evalJSON, "json", "", "Also write the results as json to this path")
	evaluateCmd.Flags().BoolVar(&evalCombinatorial, "combinatorial", true, "Evaluate every non-empty subset instead of the full list only")
	evaluateCmd.Flags().BoolVar(&evalAbsorbRemainder, "absorb-remainder", false, "Extend the last batch step to the end of the power set")
	evaluateCmd.Flags().BoolVar(&evalPerSubsetRuntime, "per-subset-runtime", false, "Record each subset's runtime instead of the run total")
	evaluateCmd.Flags().IntVarP(&evalParallel, "parallel", "p", mealclassifier.DefaultParallelization, "Subsets evaluated concurrently")
	evaluateCmd.Flags().Float64Var(&evalTestRatio, "test-ratio", mealclassifier.DefaultTestRatio, "Held out fraction of each sample")
	evaluateCmd.Flags().IntVar(&evalBest, "best", 5, "Number of best subsets to log")
	rootCmd.AddCommand(evaluateCmd)
}

// evaluateMode holds the defaults implied by the positional arguments
type evaluateMode struct {
	input   string
	output  string
	samples int
	batch   *combination.Batch
}

func parseEvaluateMode(args []string) (evaluateMode, error) {
	if len(args) == 0 {
		return evaluateMode{
			input:   defaultInput,
			output:  defaultOutput,
			samples: mealclassifier.DefaultNonSeafoodSamples,
		}, nil
	}
	if len(args) != 2 {
		return evaluateMode{}, ErrInvalidArgs
	}
	step, err := strconv.Atoi(args[0])
	if err != nil {
		return evaluateMode{}, fmt.Errorf("batch step %q, %w", args[0], ErrInvalidArgs)
	}
	num, err := strconv.Atoi(args[1])
	if err != nil {
		return evaluateMode{}, fmt.Errorf("batch num %q, %w", args[1], ErrInvalidArgs)
	}
	batch := &combination.Batch{Num: num, Step: step}
	if err := batch.Validate(); err != nil {
		return evaluateMode{}, err
	}
	return evaluateMode{
		input:   batchInput,
		output:  fmt.Sprintf(batchOutputPattern, step),
		samples: batchSamples,
		batch:   batch,
	}, nil
}

func evaluateOptions(cmd *cobra.Command, mode evaluateMode) (*mealclassifier.Options, error) {
	opt := mealclassifier.NewDefaultOptions()
	opt.NonSeafoodSamples = mode.samples
	opt.SeafoodSamples = mode.samples
	opt.Batch = mode.batch

	opt, err := evalFlags.apply(cmd, opt)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("combinatorial") {
		opt.Combinatorial = evalCombinatorial
	}
	if flags.Changed("per-subset-runtime") {
		opt.PerSubsetRuntime = evalPerSubsetRuntime
	}
	if flags.Changed("parallel") {
		opt.Parallelization = evalParallel
	}
	if flags.Changed("test-ratio") {
		opt.TestRatio = evalTestRatio
	}
	if flags.Changed("absorb-remainder") && opt.Batch != nil {
		opt.Batch.AbsorbRemainder = evalAbsorbRemainder
	}
	return opt.Validate()
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	mode, err := parseEvaluateMode(args)
	if err != nil {
		return err
	}
	opt, err := evaluateOptions(cmd, mode)
	if err != nil {
		return err
	}

	input := mode.input
	if evalFlags.input != "" {
		input = evalFlags.input
	}
	output := mode.output
	if evalOutput != "" {
		output = evalOutput
	}

	ds, err := dataset.Load(input, fped.LabelSeafoodMeal)
	if err != nil {
		return err
	}
	e, err := mealclassifier.New(opt)
	if err != nil {
		return err
	}
	res, err := e.Evaluate(cmd.Context(), ds)
	if err != nil {
		return err
	}

	if err := res.SaveCSV(output); err != nil {
		return err
	}
	slog.Info("wrote results", "path", output, "rows", len(res.Rows))

	if evalJSON != "" {
		if err := writeJSONFile(evalJSON, res.WriteJSON); err != nil {
			return err
		}
	}
	if evalPlot != "" {
		if err := res.PlotAccuracy(evalPlot, &mealclassifier.PlotOpts{Top: evalPlotTop}); err != nil {
			return err
		}
	}

	if len(res.Rows) == 0 {
		return nil
	}
	summary, err := res.Summary()
	if err != nil {
		return err
	}
	slog.Info("success rate summary",
		"count", summary.Count,
		"mean", summary.Mean,
		"std_dev", summary.StdDev,
		"min", summary.Min,
		"max", summary.Max,
	)
	for rank, row := range res.Best(evalBest) {
		slog.Info("best subset", "rank", rank+1, "vars", mealclassifier.SubsetLabel(row.Vars), "success_rate", row.SuccessRate)
	}
	return nil
}

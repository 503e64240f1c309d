package main

import (
	"fmt"
	"io"
	"os"

	mealclassifier "github.com/aouyang1/go-mealclassifier"
	"github.com/aouyang1/go-mealclassifier/fped"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// optionFlags are the evaluator options shared by evaluate and significance
type optionFlags struct {
	config     string
	input      string
	variables  string
	nonSeafood int
	seafood    int
	seed       uint64
	c          float64
	iterations int
	penalty    string
}

func (f *optionFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.config, "config", "", "JSON options file, flags take precedence")
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Input dataset (.csv, .sas7bdat or .dta)")
	cmd.Flags().StringVar(&f.variables, "variables", fped.LevelExploratory,
		fmt.Sprintf("FPED level (%v) or comma separated variable list", fped.Levels()))
	cmd.Flags().IntVar(&f.nonSeafood, "non-seafood", mealclassifier.DefaultNonSeafoodSamples, "Non-seafood meals sampled per fit")
	cmd.Flags().IntVar(&f.seafood, "seafood", mealclassifier.DefaultSeafoodSamples, "Seafood meals sampled per fit")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Seed for reproducible sampling (random when unset)")
	cmd.Flags().Float64Var(&f.c, "c", 0, "Inverse L2 regularization strength (default 1)")
	cmd.Flags().IntVar(&f.iterations, "iterations", 0, "Maximum solver iterations (default 100)")
	cmd.Flags().StringVar(&f.penalty, "penalty", "", "Solver penalty, l2 or none (default l2)")
}

// apply layers the config file and then any explicitly set flag on top of opt
func (f *optionFlags) apply(cmd *cobra.Command, opt *mealclassifier.Options) (*mealclassifier.Options, error) {
	if f.config != "" {
		bytes, err := os.ReadFile(f.config)
		if err != nil {
			return nil, fmt.Errorf("unable to read config, %w", err)
		}
		if err := json.Unmarshal(bytes, opt); err != nil {
			return nil, fmt.Errorf("unable to parse config %s, %w", f.config, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("variables") || f.config == "" {
		vars, err := fped.Resolve(f.variables)
		if err != nil {
			return nil, err
		}
		opt.Variables = vars
	}
	if flags.Changed("non-seafood") {
		opt.NonSeafoodSamples = f.nonSeafood
	}
	if flags.Changed("seafood") {
		opt.SeafoodSamples = f.seafood
	}
	if flags.Changed("seed") {
		seed := f.seed
		opt.Seed = &seed
	}
	if flags.Changed("c") || flags.Changed("iterations") || flags.Changed("penalty") {
		solver, err := opt.SolverOptions.Validate()
		if err != nil {
			return nil, err
		}
		if flags.Changed("c") {
			solver.C = f.c
		}
		if flags.Changed("iterations") {
			solver.Iterations = f.iterations
		}
		if flags.Changed("penalty") {
			solver.Penalty = f.penalty
		}
		opt.SolverOptions = solver
	}
	return opt.Validate()
}

func writeJSONFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := write(file); err != nil {
		return fmt.Errorf("unable to write %s, %w", path, err)
	}
	return file.Close()
}

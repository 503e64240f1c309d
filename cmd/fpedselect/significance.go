package main

import (
	"os"

	mealclassifier "github.com/aouyang1/go-mealclassifier"
	"github.com/aouyang1/go-mealclassifier/dataset"
	"github.com/aouyang1/go-mealclassifier/fped"
	"github.com/spf13/cobra"
)

var (
	sigFlags optionFlags
	sigJSON  string
)

var significanceCmd = &cobra.Command{
	Use:   "significance",
	Short: "Report coefficient significance for one variable list",
	Long: `Fit the inference logistic regression on a balanced sample of meals and print the
coefficient, standard error, z-score, two tailed p-value and variance inflation factor of each
variable.

Examples:
  fpedselect significance -i nhanes_full_pre_proc.csv --variables level1
  fpedselect significance -i meals.csv --variables V_DRKGR,OILS,ADD_SUGARS --json sig.json`,
	Args: cobra.NoArgs,
	RunE: runSignificance,
}

func init() {
	sigFlags.bind(significanceCmd)
	significanceCmd.Flags().StringVar(&sigJSON, "json", "", "Also write the report as json to this path")
	rootCmd.AddCommand(significanceCmd)
}

func runSignificance(cmd *cobra.Command, args []string) error {
	opt, err := sigFlags.apply(cmd, mealclassifier.NewDefaultOptions())
	if err != nil {
		return err
	}
	input := sigFlags.input
	if input == "" {
		input = defaultInput
	}

	ds, err := dataset.Load(input, fped.LabelSeafoodMeal)
	if err != nil {
		return err
	}
	report, err := mealclassifier.Significance(ds, opt)
	if err != nil {
		return err
	}
	if err := report.TablePrint(os.Stdout, "", "  "); err != nil {
		return err
	}
	if sigJSON != "" {
		return writeJSONFile(sigJSON, report.WriteJSON)
	}
	return nil
}

package main

import (
	"log/slog"

	mealclassifier "github.com/aouyang1/go-mealclassifier"
	"github.com/spf13/cobra"
)

var (
	mergeOutput string
	mergePlot   string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <results.csv>...",
	Short: "Combine batch result files into one sweep",
	Long: `Read the result csv of each batch step, order the rows by subset index and write a single
result csv. A subset present in more than one input is an error.

Examples:
  fpedselect merge model_res_df_*.csv -o model_res_df.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", defaultOutput, "Output csv path")
	mergeCmd.Flags().StringVar(&mergePlot, "plot", "", "Write an html accuracy chart to this path")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	results := make([]*mealclassifier.Results, 0, len(args))
	for _, path := range args {
		res, err := mealclassifier.LoadResultsCSV(path)
		if err != nil {
			return err
		}
		slog.Debug("read batch results", "path", path, "rows", len(res.Rows))
		results = append(results, res)
	}

	merged, err := mealclassifier.MergeResults(results...)
	if err != nil {
		return err
	}
	if err := merged.SaveCSV(mergeOutput); err != nil {
		return err
	}
	slog.Info("merged results", "inputs", len(args), "rows", len(merged.Rows), "path", mergeOutput)

	if mergePlot != "" {
		return merged.PlotAccuracy(mergePlot, nil)
	}
	return nil
}

package mealclassifier

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const DefaultPlotTop = 50

// PlotOpts configures the accuracy report
type PlotOpts struct {
	// Top limits the ranked chart to the best subsets. Values below one plot every row.
	Top int
}

// SubsetLabel joins the variables of a subset for display
func SubsetLabel(vars []string) string {
	return strings.Join(vars, " + ")
}

// BarSuccessRate generates an echart bar chart of the success rate of each row in the order given
func BarSuccessRate(title string, rows []ResultRow) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithYAxisOpts(
			opts.YAxis{
				Name: ColumnSuccessRate,
			},
		),
	)

	labels := make([]string, 0, len(rows))
	barData := make([]opts.BarData, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, SubsetLabel(row.Vars))
		barData = append(barData, opts.BarData{Value: row.SuccessRate})
	}

	bar.SetXAxis(labels).
		AddSeries(ColumnSuccessRate, barData)
	return bar
}

// LineSuccessRate generates an echart line chart of the success rate across the sweep index
func LineSuccessRate(title string, rows []ResultRow) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	idx := make([]int, 0, len(rows))
	lineData := make([]opts.LineData, 0, len(rows))
	for _, row := range rows {
		idx = append(idx, row.Index)
		lineData = append(lineData, opts.LineData{Value: row.SuccessRate})
	}

	line.SetXAxis(idx).
		AddSeries(ColumnSuccessRate, lineData)
	return line
}

// RenderAccuracy writes an html page ranking the best subsets and showing the success rate
// across the whole sweep.
func (r *Results) RenderAccuracy(w io.Writer, opt *PlotOpts) error {
	if len(r.Rows) == 0 {
		return ErrNoResults
	}
	top := DefaultPlotTop
	if opt != nil {
		top = opt.Top
	}
	if top < 1 {
		top = len(r.Rows)
	}

	page := components.NewPage()
	page.AddCharts(
		BarSuccessRate(fmt.Sprintf("Top %d Variable Subsets", min(top, len(r.Rows))), r.Best(top)),
		LineSuccessRate("Success Rate by Subset", r.Rows),
	)
	return page.Render(w)
}

// PlotAccuracy renders the accuracy report to an html file at path
func (r *Results) PlotAccuracy(path string, opt *PlotOpts) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := r.RenderAccuracy(file, opt); err != nil {
		return fmt.Errorf("unable to render accuracy plot, %w", err)
	}
	return file.Close()
}

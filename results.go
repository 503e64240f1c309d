package mealclassifier

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/aouyang1/go-mealclassifier/linearmodel"
	"github.com/aouyang1/go-mealclassifier/stats"
	"github.com/goccy/go-json"
)

var (
	ErrNoResults        = errors.New("no results")
	ErrMissingColumn    = errors.New("missing required results column")
	ErrDuplicateSubset  = errors.New("subset index appears in more than one result")
	ErrMalformedResults = errors.New("malformed results row")
)

const (
	ColumnSuccessRate = "Success Rate"
	ColumnRuntime     = "Result Runtime (Seconds)"
)

// ResultRow is the score of a single variable subset. Scores is not part of the csv layout
// and is nil for rows read back from csv.
type ResultRow struct {
	Index          int                 `json:"index"`
	Vars           []string            `json:"vars"`
	SuccessRate    float64             `json:"success_rate"`
	RuntimeSeconds float64             `json:"runtime_seconds"`
	Scores         *linearmodel.Scores `json:"scores,omitempty"`
}

// Results holds the rows of one evaluation run, or of several merged runs
type Results struct {
	Variables      []string    `json:"variables,omitempty"`
	Seed           uint64      `json:"seed"`
	RuntimeSeconds float64     `json:"runtime_seconds"`
	Rows           []ResultRow `json:"rows"`
}

// width is the number of variable columns needed to hold the largest subset
func (r *Results) width() int {
	w := 1
	for _, row := range r.Rows {
		w = max(w, len(row.Vars))
	}
	return w
}

// WriteCSV writes one line per row. The leading unnamed column is the sweep index, followed
// by the columns 0..k-1 holding the subset's variables left aligned and padded with empty
// cells, then the success rate and runtime.
func (r *Results) WriteCSV(w io.Writer) error {
	k := r.width()
	header := make([]string, 0, k+3)
	header = append(header, "")
	for i := 0; i < k; i++ {
		header = append(header, strconv.Itoa(i))
	}
	header = append(header, ColumnSuccessRate, ColumnRuntime)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range r.Rows {
		record := make([]string, len(header))
		record[0] = strconv.Itoa(row.Index)
		copy(record[1:], row.Vars)
		record[k+1] = strconv.FormatFloat(row.SuccessRate, 'f', -1, 64)
		record[k+2] = strconv.FormatFloat(row.RuntimeSeconds, 'f', -1, 64)
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the results as csv to path
func (r *Results) SaveCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := r.WriteCSV(file); err != nil {
		return fmt.Errorf("unable to write results to %s, %w", path, err)
	}
	return file.Close()
}

// ReadResultsCSV parses results written by WriteCSV. Variable columns are every column
// between the index and the success rate.
func ReadResultsCSV(rd io.Reader) (*Results, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoResults
	}

	header := records[0]
	successCol := slices.Index(header, ColumnSuccessRate)
	runtimeCol := slices.Index(header, ColumnRuntime)
	if successCol < 1 {
		return nil, fmt.Errorf("%s, %w", ColumnSuccessRate, ErrMissingColumn)
	}
	if runtimeCol < 0 {
		return nil, fmt.Errorf("%s, %w", ColumnRuntime, ErrMissingColumn)
	}

	res := &Results{Rows: make([]ResultRow, 0, len(records)-1)}
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("line %d has %d fields instead of %d, %w", i+2, len(record), len(header), ErrMalformedResults)
		}
		idx, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d index %q, %w", i+2, record[0], ErrMalformedResults)
		}
		row := ResultRow{Index: idx}
		for _, v := range record[1:successCol] {
			if v = strings.TrimSpace(v); v != "" {
				row.Vars = append(row.Vars, v)
			}
		}
		if row.SuccessRate, err = strconv.ParseFloat(record[successCol], 64); err != nil {
			return nil, fmt.Errorf("line %d success rate %q, %w", i+2, record[successCol], ErrMalformedResults)
		}
		if row.RuntimeSeconds, err = strconv.ParseFloat(record[runtimeCol], 64); err != nil {
			return nil, fmt.Errorf("line %d runtime %q, %w", i+2, record[runtimeCol], ErrMalformedResults)
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

// LoadResultsCSV reads a results csv from path
func LoadResultsCSV(path string) (*Results, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	res, err := ReadResultsCSV(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read results from %s, %w", path, err)
	}
	return res, nil
}

// MergeResults concatenates the rows of several runs, typically the batch steps of one sweep,
// and orders them by sweep index. A subset index present in more than one input is an error.
func MergeResults(results ...*Results) (*Results, error) {
	merged := &Results{}
	seen := make(map[int]struct{})
	for _, res := range results {
		if res == nil {
			continue
		}
		if merged.Variables == nil && len(res.Variables) > 0 {
			merged.Variables = slices.Clone(res.Variables)
			merged.Seed = res.Seed
		}
		merged.RuntimeSeconds += res.RuntimeSeconds
		for _, row := range res.Rows {
			if _, exists := seen[row.Index]; exists {
				return nil, fmt.Errorf("index %d, %w", row.Index, ErrDuplicateSubset)
			}
			seen[row.Index] = struct{}{}
			merged.Rows = append(merged.Rows, row)
		}
	}
	if len(merged.Rows) == 0 {
		return nil, ErrNoResults
	}
	slices.SortFunc(merged.Rows, func(a, b ResultRow) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return merged, nil
}

// Best returns up to n rows with the highest success rate. Ties keep sweep order.
func (r *Results) Best(n int) []ResultRow {
	rows := slices.Clone(r.Rows)
	slices.SortStableFunc(rows, func(a, b ResultRow) int {
		return cmp.Compare(b.SuccessRate, a.SuccessRate)
	})
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// Summary describes the distribution of success rates across all rows
func (r *Results) Summary() (stats.Summary, error) {
	rates := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		rates[i] = row.SuccessRate
	}
	return stats.Summarize(rates)
}

// WriteJSON writes the results as indented json
func (r *Results) WriteJSON(w io.Writer) error {
	bytes, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(bytes)
	return err
}

package mealclassifier

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aouyang1/go-mealclassifier/stats"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupResults() *Results {
	return &Results{
		Variables:      []string{"A", "B"},
		Seed:           3,
		RuntimeSeconds: 1.5,
		Rows: []ResultRow{
			{Index: 0, Vars: []string{"A"}, SuccessRate: 0.85, RuntimeSeconds: 1.5},
			{Index: 1, Vars: []string{"B"}, SuccessRate: 0.6, RuntimeSeconds: 1.5},
			{Index: 2, Vars: []string{"A", "B"}, SuccessRate: 0.9, RuntimeSeconds: 1.5},
		},
	}
}

func TestResultsWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.Nil(t, setupResults().WriteCSV(&buf))

	expected := ",0,1,Success Rate,Result Runtime (Seconds)\n" +
		"0,A,,0.85,1.5\n" +
		"1,B,,0.6,1.5\n" +
		"2,A,B,0.9,1.5\n"
	assert.Equal(t, expected, buf.String())
}

func TestReadResultsCSV(t *testing.T) {
	var buf bytes.Buffer
	res := setupResults()
	require.Nil(t, res.WriteCSV(&buf))

	parsed, err := ReadResultsCSV(&buf)
	require.Nil(t, err)
	assert.Equal(t, res.Rows, parsed.Rows)
}

func TestReadResultsCSVErrors(t *testing.T) {
	testData := map[string]struct {
		input string
		err   error
	}{
		"empty": {
			"",
			ErrNoResults,
		},
		"missing success rate": {
			",0,Result Runtime (Seconds)\n0,A,1.5\n",
			ErrMissingColumn,
		},
		"missing runtime": {
			",0,Success Rate\n0,A,0.5\n",
			ErrMissingColumn,
		},
		"bad index": {
			",0,Success Rate,Result Runtime (Seconds)\nx,A,0.5,1.5\n",
			ErrMalformedResults,
		},
		"bad rate": {
			",0,Success Rate,Result Runtime (Seconds)\n0,A,high,1.5\n",
			ErrMalformedResults,
		},
		"short row": {
			",0,Success Rate,Result Runtime (Seconds)\n0,A,0.5\n",
			ErrMalformedResults,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := ReadResultsCSV(strings.NewReader(td.input))
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestMergeResults(t *testing.T) {
	full := setupResults()
	first := &Results{Variables: full.Variables, Seed: 3, RuntimeSeconds: 1.0, Rows: full.Rows[2:]}
	second := &Results{Variables: full.Variables, Seed: 3, RuntimeSeconds: 2.0, Rows: full.Rows[:2]}

	merged, err := MergeResults(first, nil, second)
	require.Nil(t, err)
	assert.Equal(t, full.Rows, merged.Rows)
	assert.Equal(t, full.Variables, merged.Variables)
	assert.Equal(t, 3.0, merged.RuntimeSeconds)

	_, err = MergeResults(first, first)
	assert.ErrorIs(t, err, ErrDuplicateSubset)

	_, err = MergeResults()
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestResultsBest(t *testing.T) {
	res := setupResults()
	res.Rows = append(res.Rows, ResultRow{Index: 3, Vars: []string{"C"}, SuccessRate: 0.85})

	testData := map[string]struct {
		n        int
		expected []int
	}{
		"top one":   {1, []int{2}},
		"ties keep": {3, []int{2, 0, 3}},
		"all":       {10, []int{2, 0, 3, 1}},
		"negative":  {-1, []int{2, 0, 3, 1}},
		"none":      {0, []int{}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			best := res.Best(td.n)
			idx := make([]int, len(best))
			for i, row := range best {
				idx[i] = row.Index
			}
			assert.Equal(t, td.expected, idx)
		})
	}

	// sweep order is untouched
	assert.Equal(t, 0, res.Rows[0].Index)
}

func TestResultsSummary(t *testing.T) {
	s, err := setupResults().Summary()
	require.Nil(t, err)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 0.6, s.Min)
	assert.Equal(t, 0.9, s.Max)

	_, err = (&Results{}).Summary()
	assert.ErrorIs(t, err, stats.ErrNoValues)
}

func TestResultsWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	res := setupResults()
	require.Nil(t, res.WriteJSON(&buf))

	var parsed Results
	require.Nil(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, res, &parsed)
}

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/kshedden/datareader"
)

const readChunkRows = 10000

var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrNoHeader          = errors.New("no header row")
)

// Load reads a dataset from path choosing the reader by extension: .csv, .sas7bdat or .dta.
// Columns that are not numeric are dropped, except for the label which must be numeric.
func Load(path, label string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open dataset, %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f, label)
	case ".sas7bdat":
		sas, err := datareader.NewSAS7BDATReader(f)
		if err != nil {
			return nil, fmt.Errorf("unable to read sas7bdat header, %w", err)
		}
		return readStatfile(sas, label)
	case ".dta":
		stata, err := datareader.NewStataReader(f)
		if err != nil {
			return nil, fmt.Errorf("unable to read stata header, %w", err)
		}
		return readStatfile(stata, label)
	default:
		return nil, fmt.Errorf("%s, %w", path, ErrUnsupportedFormat)
	}
}

// ReadCSV parses a delimited table with a header row. Empty fields and NA/NaN become NaN.
// Unnamed columns, such as a written row index, are skipped.
func ReadCSV(r io.Reader, label string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read header, %w", err)
	}
	names := make([]string, len(header))
	copy(names, header)

	columns := make([][]float64, len(names))
	numeric := make([]bool, len(names))
	for i, name := range names {
		numeric[i] = strings.TrimSpace(name) != ""
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read line %d, %w", line, err)
		}
		for i, field := range record {
			if !numeric[i] {
				continue
			}
			v, ok := parseFloat(field)
			if !ok {
				slog.Debug("dropping non-numeric column", "column", names[i], "line", line, "value", field)
				numeric[i] = false
				columns[i] = nil
				continue
			}
			columns[i] = append(columns[i], v)
		}
	}

	keepNames := make([]string, 0, len(names))
	keepCols := make([][]float64, 0, len(names))
	for i, name := range names {
		if !numeric[i] {
			if name == label {
				return nil, fmt.Errorf("label %s is not numeric, %w", label, ErrNonBinaryLabel)
			}
			continue
		}
		keepNames = append(keepNames, name)
		keepCols = append(keepCols, columns[i])
	}
	return NewDataset(keepNames, keepCols, label)
}

func parseFloat(field string) (float64, bool) {
	field = strings.TrimSpace(field)
	switch strings.ToLower(field) {
	case "", "na", "nan", "null":
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// statfileReader is the chunked column reader shared by the SAS and Stata readers
type statfileReader interface {
	Read(rows int) ([]*datareader.Series, error)
}

func readStatfile(r statfileReader, label string) (*Dataset, error) {
	var names []string
	var columns [][]float64
	numeric := make(map[string]bool)

	for {
		chunk, err := r.Read(readChunkRows)
		if errors.Is(err, io.EOF) || (err == nil && len(chunk) == 0) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read rows, %w", err)
		}
		if names == nil {
			for _, ser := range chunk {
				names = append(names, ser.Name)
				numeric[ser.Name] = true
			}
			columns = make([][]float64, len(names))
		}
		var rows int
		for i, ser := range chunk {
			vals, ok := seriesFloats(ser)
			if !ok {
				numeric[names[i]] = false
				continue
			}
			rows = len(vals)
			columns[i] = append(columns[i], vals...)
		}
		if rows == 0 {
			break
		}
	}
	if names == nil {
		return nil, ErrNoData
	}

	keepNames := make([]string, 0, len(names))
	keepCols := make([][]float64, 0, len(names))
	for i, name := range names {
		if !numeric[name] {
			if name == label {
				return nil, fmt.Errorf("label %s is not numeric, %w", label, ErrNonBinaryLabel)
			}
			slog.Debug("dropping non-numeric column", "column", name)
			continue
		}
		keepNames = append(keepNames, name)
		keepCols = append(keepCols, columns[i])
	}
	return NewDataset(keepNames, keepCols, label)
}

// seriesFloats upcasts a numeric series to float64 with missing entries set to NaN. String and
// date series are not numeric.
func seriesFloats(ser *datareader.Series) ([]float64, bool) {
	data, ok := ser.UpcastNumeric().Data().([]float64)
	if !ok {
		return nil, false
	}
	vals := slices.Clone(data)
	for i, missing := range ser.Missing() {
		if missing && i < len(vals) {
			vals[i] = math.NaN()
		}
	}
	return vals, true
}

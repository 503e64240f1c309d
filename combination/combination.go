// Package combination enumerates the candidate variable subsets of a selection sweep and
// partitions the sweep into contiguous batches that can run as independent processes.
package combination

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat/combin"
)

// MaxVariables bounds the candidate list of a combinatorial sweep so subset indices fit an int
const MaxVariables = 48

var (
	ErrNoVariables       = errors.New("no candidate variables")
	ErrTooManyVariables  = errors.New("too many candidate variables for a combinatorial sweep")
	ErrDuplicateVariable = errors.New("duplicate candidate variable")
	ErrInvalidRange      = errors.New("invalid subset index range")
	ErrInvalidBatchNum   = errors.New("batch count must be positive")
	ErrInvalidBatchStep  = errors.New("batch step must be within [0, batch count)")
)

// Subset is one candidate predictor set with its position in the unbatched sweep
type Subset struct {
	Index int      `json:"index"`
	Vars  []string `json:"vars"`
}

// Batch selects one of Num equal width contiguous slices of a sweep. The width is
// total / Num using integer division so trailing subsets beyond Num*width are dropped
// unless AbsorbRemainder extends the last step to the end of the sweep.
type Batch struct {
	Num             int  `json:"batch_num"`
	Step            int  `json:"batch_step"`
	AbsorbRemainder bool `json:"absorb_remainder"`
}

// Validate checks the batch count and step
func (b *Batch) Validate() error {
	if b == nil {
		return nil
	}
	if b.Num <= 0 {
		return fmt.Errorf("got %d, %w", b.Num, ErrInvalidBatchNum)
	}
	if b.Step < 0 || b.Step >= b.Num {
		return fmt.Errorf("got step %d of %d, %w", b.Step, b.Num, ErrInvalidBatchStep)
	}
	return nil
}

// Range returns the half open [start, end) index range of this step over total subsets
func (b *Batch) Range(total int) (int, int, error) {
	if err := b.Validate(); err != nil {
		return 0, 0, err
	}
	if b == nil {
		return 0, total, nil
	}
	width := total / b.Num
	start := width * b.Step
	end := start + width
	if b.AbsorbRemainder && b.Step == b.Num-1 {
		end = total
	}
	if dropped := total - width*b.Num; dropped > 0 && !b.AbsorbRemainder && b.Step == b.Num-1 {
		slog.Warn("batch slicing drops trailing subsets", "total", total, "batch_num", b.Num, "dropped", dropped)
	}
	return start, end, nil
}

// PowerSetSize returns 2^k - 1, the number of non empty subsets of k variables
func PowerSetSize(k int) (int, error) {
	if k <= 0 {
		return 0, ErrNoVariables
	}
	if k > MaxVariables {
		return 0, fmt.Errorf("got %d, max %d, %w", k, MaxVariables, ErrTooManyVariables)
	}
	return 1<<k - 1, nil
}

// Enumerate returns the non empty subsets of vars with sweep index in [start, end). Subsets
// are ordered by size and then lexicographically by position in vars, so index 0 is {vars[0]}
// and index 2^k-2 is the full list. Each returned Vars slice is freshly allocated.
func Enumerate(vars []string, start, end int) ([]Subset, error) {
	total, err := PowerSetSize(len(vars))
	if err != nil {
		return nil, err
	}
	if err := checkDistinct(vars); err != nil {
		return nil, err
	}
	if start < 0 || end > total || start > end {
		return nil, fmt.Errorf("got [%d, %d) of %d subsets, %w", start, end, total, ErrInvalidRange)
	}

	n := len(vars)
	subsets := make([]Subset, 0, end-start)
	idx := 0
	for k := 1; k <= n && idx < end; k++ {
		blockSize := combin.Binomial(n, k)
		if idx+blockSize <= start {
			idx += blockSize
			continue
		}

		gen := combin.NewCombinationGenerator(n, k)
		comb := make([]int, k)
		for gen.Next() && idx < end {
			if idx >= start {
				gen.Combination(comb)
				subset := make([]string, k)
				for i, c := range comb {
					subset[i] = vars[c]
				}
				subsets = append(subsets, Subset{Index: idx, Vars: subset})
			}
			idx++
		}
	}
	return subsets, nil
}

// Plan lists the subsets one run evaluates. A combinatorial plan is the power set minus the
// empty set, narrowed to the batch step if batch is set. A non combinatorial plan is the
// full candidate list as a single subset and ignores batch.
func Plan(vars []string, combinatorial bool, batch *Batch) ([]Subset, error) {
	if len(vars) == 0 {
		return nil, ErrNoVariables
	}
	if !combinatorial {
		if err := checkDistinct(vars); err != nil {
			return nil, err
		}
		full := make([]string, len(vars))
		copy(full, vars)
		return []Subset{{Index: 0, Vars: full}}, nil
	}

	total, err := PowerSetSize(len(vars))
	if err != nil {
		return nil, err
	}
	start, end, err := batch.Range(total)
	if err != nil {
		return nil, err
	}
	return Enumerate(vars, start, end)
}

func checkDistinct(vars []string) error {
	seen := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		if _, exists := seen[v]; exists {
			return fmt.Errorf("%s, %w", v, ErrDuplicateVariable)
		}
		seen[v] = struct{}{}
	}
	return nil
}

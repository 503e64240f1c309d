package linearmodel

import (
	"errors"
	"fmt"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Scores tracks how well predicted 0/1 labels match the actual labels. The positive class is 1.
type Scores struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// NewScores calculates the classification scores given the predicted and actual labels
func NewScores(predicted, actual []float64) (*Scores, error) {
	acc, err := Accuracy(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute accuracy, %w", err)
	}
	tp, fp, fn, err := confusion(predicted, actual)
	if err != nil {
		return nil, err
	}

	s := &Scores{Accuracy: acc}
	if tp+fp > 0 {
		s.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		s.Recall = float64(tp) / float64(tp+fn)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2.0 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s, nil
}

// Accuracy is the fraction of rows where the predicted label equals the actual label. An
// empty input scores 0.
func Accuracy(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	if len(actual) == 0 {
		return 0.0, nil
	}

	var correct int
	for i := range actual {
		if predicted[i] == actual[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(actual)), nil
}

func confusion(predicted, actual []float64) (int, int, int, error) {
	if len(predicted) != len(actual) {
		return 0, 0, 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	var tp, fp, fn int
	for i := range actual {
		switch {
		case predicted[i] == 1 && actual[i] == 1:
			tp++
		case predicted[i] == 1:
			fp++
		case actual[i] == 1:
			fn++
		}
	}
	return tp, fp, fn, nil
}

package evaluation

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type classStats struct {
	tp, fp, fn, support int
}

func (s classStats) precision() float64 {
	return ratio(s.tp, s.tp+s.fp)
}

func (s classStats) recall() float64 {
	return ratio(s.tp, s.tp+s.fn)
}

func (s classStats) f1() float64 {
	p, r := s.precision(), s.recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// NewF1Score builds an F1 metric over argmax predictions.
// The "average" argument selects "weighted" (default) or "macro" averaging.
func NewF1Score(args Args) (MetricFunc, error) {
	average := "weighted"
	if v, ok := args["average"]; ok {
		s, ok := v.(string)
		if !ok || (s != "weighted" && s != "macro") {
			return nil, fmt.Errorf("%w: average %v", ErrInvalidArg, v)
		}
		average = s
	}

	return func(pred *mat.Dense, labels []int) (any, error) {
		predicted, err := argmaxRows(pred, labels)
		if err != nil {
			return nil, err
		}

		stats, classes := confusion(labels, predicted)
		var sum, weight float64
		for _, c := range classes {
			s := stats[c]
			switch average {
			case "macro":
				sum += s.f1()
				weight++
			default:
				sum += s.f1() * float64(s.support)
				weight += float64(s.support)
			}
		}
		if weight == 0 {
			return 0.0, nil
		}
		return sum / weight, nil
	}, nil
}

// NewCrossEntropy builds the mean softmax cross-entropy of logits against labels.
func NewCrossEntropy(Args) (MetricFunc, error) {
	return func(pred *mat.Dense, labels []int) (any, error) {
		if err := checkInput(pred, labels); err != nil {
			return nil, err
		}

		_, cols := pred.Dims()
		var total float64
		for i, label := range labels {
			if label >= cols {
				return nil, fmt.Errorf("%w: label %d with %d columns", ErrLabelOutOfRange, label, cols)
			}
			row := pred.RawRowView(i)
			total += floats.LogSumExp(row) - row[label]
		}
		return total / float64(len(labels)), nil
	}, nil
}

// NewClassificationReport builds a per-class precision/recall/F1/support report
// with accuracy, macro and weighted averages. The optional "target_names"
// argument ([]string) names classes by label index.
func NewClassificationReport(args Args) (MetricFunc, error) {
	var names []string
	if v, ok := args["target_names"]; ok {
		n, ok := v.([]string)
		if !ok {
			return nil, fmt.Errorf("%w: target_names %v", ErrInvalidArg, v)
		}
		names = n
	}

	return func(pred *mat.Dense, labels []int) (any, error) {
		predicted, err := argmaxRows(pred, labels)
		if err != nil {
			return nil, err
		}

		stats, classes := confusion(labels, predicted)
		report := make(map[string]any, len(classes)+3)

		var macro, weighted [3]float64
		var correct int
		for _, c := range classes {
			s := stats[c]
			correct += s.tp
			row := [3]float64{s.precision(), s.recall(), s.f1()}
			for i := range row {
				macro[i] += row[i]
				weighted[i] += row[i] * float64(s.support)
			}
			report[className(c, names)] = reportRow(row, s.support)
		}

		n := len(labels)
		k := float64(len(classes))
		for i := range macro {
			macro[i] /= k
			weighted[i] /= float64(n)
		}

		report["accuracy"] = float64(correct) / float64(n)
		report["macro avg"] = reportRow(macro, n)
		report["weighted avg"] = reportRow(weighted, n)
		return report, nil
	}, nil
}

func reportRow(v [3]float64, support int) map[string]any {
	return map[string]any{
		"precision": v[0],
		"recall":    v[1],
		"f1-score":  v[2],
		"support":   support,
	}
}

func className(c int, names []string) string {
	if c < len(names) {
		return names[c]
	}
	return strconv.Itoa(c)
}

func confusion(labels, predicted []int) (map[int]*classStats, []int) {
	stats := make(map[int]*classStats)
	get := func(c int) *classStats {
		if s, ok := stats[c]; ok {
			return s
		}
		s := &classStats{}
		stats[c] = s
		return s
	}

	for i, y := range labels {
		p := predicted[i]
		get(y).support++
		if p == y {
			get(y).tp++
			continue
		}
		get(y).fn++
		get(p).fp++
	}

	classes := make([]int, 0, len(stats))
	for c := range stats {
		classes = append(classes, c)
	}
	slices.Sort(classes)
	return stats, classes
}

func argmaxRows(pred *mat.Dense, labels []int) ([]int, error) {
	if err := checkInput(pred, labels); err != nil {
		return nil, err
	}

	out := make([]int, len(labels))
	for i := range labels {
		out[i] = floats.MaxIdx(pred.RawRowView(i))
	}
	return out, nil
}

func checkInput(pred *mat.Dense, labels []int) error {
	if pred == nil || pred.IsEmpty() || len(labels) == 0 {
		return ErrEmptyInput
	}
	rows, _ := pred.Dims()
	if rows != len(labels) {
		return fmt.Errorf("%w: %d rows, %d labels", ErrLengthMismatch, rows, len(labels))
	}
	return nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	v := float64(num) / float64(den)
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Package classes resolves class-split identifiers into class counts and
// label names for the BRACS tumor-type taxonomy.
//
// A class split lists tumor-type groups separated by "VS"; tumor types that
// share a class are joined with "+". For example
// "benign+pathologicalbenign+udhVSadh+feaVSdcis+malignant" is a three-class
// scenario whose label 1 covers adh and fea.
package classes

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	groupSeparator  = "VS"
	memberSeparator = "+"
)

// TumorTypes lists every tumor type that may appear in a class split.
var TumorTypes = []string{
	"benign",
	"pathologicalbenign",
	"udh",
	"adh",
	"fea",
	"dcis",
	"malignant",
}

var (
	// ErrEmptySplit indicates that no class split was provided.
	ErrEmptySplit = errors.New("class split must not be empty")
	// ErrUnknownTumorType indicates a class split member outside TumorTypes.
	ErrUnknownTumorType = errors.New("unknown tumor type")
	// ErrDuplicateTumorType indicates a tumor type assigned to more than one class.
	ErrDuplicateTumorType = errors.New("tumor type assigned to multiple classes")
)

// Lookup resolves class splits. Consumers depend on this interface so that
// alternative taxonomies can be substituted in tests.
type Lookup interface {
	NumberOfClasses(split string) (int, error)
	LabelToTumorType(split string) (map[int]string, error)
}

// BRACS is the Lookup for the seven BRACS tumor types.
type BRACS struct{}

// NumberOfClasses returns the number of classes the split defines.
func (BRACS) NumberOfClasses(split string) (int, error) {
	groups, err := parse(split)
	if err != nil {
		return 0, err
	}
	return len(groups), nil
}

// LabelToTumorType maps each class label to its group name, e.g. 0 -> "benign+pathologicalbenign+udh".
func (BRACS) LabelToTumorType(split string) (map[int]string, error) {
	groups, err := parse(split)
	if err != nil {
		return nil, err
	}

	names := make(map[int]string, len(groups))
	for i, g := range groups {
		names[i] = strings.Join(g, memberSeparator)
	}
	return names, nil
}

// TumorTypeToLabel maps each tumor type in the split to the class label it belongs to.
func TumorTypeToLabel(split string) (map[string]int, error) {
	groups, err := parse(split)
	if err != nil {
		return nil, err
	}

	labels := make(map[string]int)
	for i, g := range groups {
		for _, t := range g {
			labels[t] = i
		}
	}
	return labels, nil
}

func parse(split string) ([][]string, error) {
	split = strings.TrimSpace(split)
	if split == "" {
		return nil, ErrEmptySplit
	}

	seen := make(map[string]bool)
	parts := strings.Split(split, groupSeparator)
	groups := make([][]string, 0, len(parts))

	for _, part := range parts {
		members := strings.Split(part, memberSeparator)
		group := make([]string, 0, len(members))
		for _, m := range members {
			m = strings.ToLower(strings.TrimSpace(m))
			if !slices.Contains(TumorTypes, m) {
				return nil, fmt.Errorf("%w: %q in %q", ErrUnknownTumorType, m, split)
			}
			if seen[m] {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateTumorType, m)
			}
			seen[m] = true
			group = append(group, m)
		}
		groups = append(groups, group)
	}

	return groups, nil
}

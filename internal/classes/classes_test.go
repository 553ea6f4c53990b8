package classes_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/crobbins327/histocartography/internal/classes"
)

func TestNumberOfClasses(t *testing.T) {
	tests := []struct {
		name  string
		split string
		want  int
	}{
		{"seven class", "benignVSpathologicalbenignVSudhVSadhVSfeaVSdcisVSmalignant", 7},
		{"three class", "benign+pathologicalbenign+udhVSadh+feaVSdcis+malignant", 3},
		{"two class", "benign+pathologicalbenign+udh+adh+feaVSdcis+malignant", 2},
	}

	var lookup classes.BRACS
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lookup.NumberOfClasses(tt.split)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("classes: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLabelToTumorType(t *testing.T) {
	var lookup classes.BRACS
	got, err := lookup.LabelToTumorType("benign+pathologicalbenign+udhVSadh+feaVSdcis+malignant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[int]string{
		0: "benign+pathologicalbenign+udh",
		1: "adh+fea",
		2: "dcis+malignant",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("label names mismatch (-want +got):\n%s", diff)
	}
}

func TestTumorTypeToLabel(t *testing.T) {
	got, err := classes.TumorTypeToLabel("benignVSdcis+malignant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["malignant"] != 1 || got["benign"] != 0 {
		t.Errorf("unexpected mapping: %v", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		split string
		want  error
	}{
		{"empty", "  ", classes.ErrEmptySplit},
		{"unknown", "benignVSsarcoma", classes.ErrUnknownTumorType},
		{"duplicate", "benignVSbenign+dcis", classes.ErrDuplicateTumorType},
		{"empty group", "benignVS", classes.ErrUnknownTumorType},
	}

	var lookup classes.BRACS
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lookup.NumberOfClasses(tt.split)
			if !errors.Is(err, tt.want) {
				t.Errorf("error: got %v, want %v", err, tt.want)
			}
		})
	}
}

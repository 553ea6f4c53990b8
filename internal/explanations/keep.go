package explanations

import (
	"fmt"
	"math"
	"strconv"
)

// KeepLevel identifies a pruning level as the percentage of nodes kept,
// so fraction 1.0 is KeepLevel(100). It decodes from and encodes to the
// decimal fraction used as the JSON object key ("1.0", "0.5").
type KeepLevel int

// FullGraph is the pruning level that keeps every node.
const FullGraph KeepLevel = 100

// levelEpsilon absorbs binary representation error, so "0.29" is 29 percent
// while 0.496 still truncates to 49.
const levelEpsilon = 1e-9

// LevelFromFraction converts a kept fraction in (0, 1] to a KeepLevel,
// truncating to the whole percent.
func LevelFromFraction(f float64) (KeepLevel, error) {
	if math.IsNaN(f) || f <= 0 || f > 1 {
		return 0, fmt.Errorf("%w: keep fraction %v outside (0, 1]", ErrInvalidRecord, f)
	}
	level := KeepLevel(math.Floor(f*100 + levelEpsilon))
	if level == 0 {
		return 0, fmt.Errorf("%w: keep fraction %v truncates to zero", ErrInvalidRecord, f)
	}
	return level, nil
}

// Fraction returns the kept fraction, e.g. 0.5 for KeepLevel(50).
func (k KeepLevel) Fraction() float64 {
	return float64(k) / 100
}

// Key returns the report and file-name prefix for the level, e.g. "keep_100".
func (k KeepLevel) Key() string {
	return "keep_" + strconv.Itoa(int(k))
}

func (k KeepLevel) String() string {
	return k.Key()
}

// MarshalText encodes the level as its decimal fraction.
func (k KeepLevel) MarshalText() ([]byte, error) {
	s := strconv.FormatFloat(k.Fraction(), 'f', -1, 64)
	if k%100 == 0 {
		s = strconv.FormatFloat(k.Fraction(), 'f', 1, 64)
	}
	return []byte(s), nil
}

// UnmarshalText decodes a decimal fraction such as "0.25".
func (k *KeepLevel) UnmarshalText(text []byte) error {
	f, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return fmt.Errorf("%w: keep level %q: %w", ErrInvalidRecord, text, err)
	}
	level, err := LevelFromFraction(f)
	if err != nil {
		return err
	}
	*k = level
	return nil
}

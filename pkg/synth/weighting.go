package synth

import (
	"strconv"
	"strings"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
)

// Weighting selects how per-tree edge weights combine into split weights.
type Weighting int

const (
	// AverageRelative averages, over the trees that see the split, the tree's
	// edge weight divided by that tree's mean edge weight.
	AverageRelative Weighting = iota
	// Mean averages the raw edge weights.
	Mean
	// TreeSizeWeightedMean averages the raw edge weights, weighting each tree
	// by the number of taxa it mentions.
	TreeSizeWeightedMean
	// Sum adds the raw edge weights.
	Sum
	// Min takes the smallest edge weight.
	Min
	// None gives every split weight 1 and confidence 1.
	None
)

var weightingNames = [...]string{
	AverageRelative:      "AverageRelative",
	Mean:                 "Mean",
	TreeSizeWeightedMean: "TreeSizeWeightedMean",
	Sum:                  "Sum",
	Min:                  "Min",
	None:                 "None",
}

// Weightings returns every policy name.
func Weightings() []string { return weightingNames[:] }

func (w Weighting) String() string {
	if w < 0 || int(w) >= len(weightingNames) {
		return "Weighting(" + strconv.Itoa(int(w)) + ")"
	}
	return weightingNames[w]
}

// ParseWeighting parses a policy name, ignoring case.
func ParseWeighting(s string) (Weighting, error) {
	for i, name := range weightingNames {
		if strings.EqualFold(s, name) {
			return Weighting(i), nil
		}
	}
	return 0, zerrors.New(zerrors.ErrCodeInvalidOption,
		"unknown weighting %q (want one of %s)", s, strings.Join(weightingNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (w Weighting) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Weighting) UnmarshalText(b []byte) error {
	v, err := ParseWeighting(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/splits"
	"github.com/matzehuels/zclosure/pkg/taxa"
)

type system struct {
	Taxa   []string `json:"taxa"`
	Hidden []int    `json:"hidden,omitempty"`
	Splits []split  `json:"splits"`
}

type split struct {
	Side       []int   `json:"side"`
	Weight     float64 `json:"weight"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label,omitempty"`
}

// WriteSystem encodes sys as indented JSON. tx supplies the taxon labels and
// must cover sys.NTax taxa.
func WriteSystem(w io.Writer, sys *splits.System, tx *taxa.Taxa) error {
	if tx.Len() != sys.NTax {
		return zerrors.New(zerrors.ErrCodeInternal, "taxon table has %d taxa, system has %d", tx.Len(), sys.NTax)
	}
	out := system{
		Taxa:   tx.Labels(),
		Hidden: sys.Hidden.Members(),
		Splits: make([]split, len(sys.Splits)),
	}
	for i, sp := range sys.Splits {
		out.Splits[i] = split{
			Side:       sp.Side.Members(),
			Weight:     sp.Weight,
			Confidence: sp.Confidence,
			Label:      sp.Label,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadSystem decodes a split system written by [WriteSystem] and returns it
// with its taxon table.
func ReadSystem(r io.Reader) (*splits.System, *taxa.Taxa, error) {
	var data system
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, nil, zerrors.Wrap(zerrors.ErrCodeInvalidFormat, err, "decode")
	}
	tx, err := taxa.New(data.Taxa...)
	if err != nil {
		return nil, nil, err
	}

	n := tx.Len()
	sys := splits.NewSystem(n)
	valid := func(members []int) error {
		for _, t := range members {
			if t < 1 || t > n {
				return zerrors.New(zerrors.ErrCodeInvalidFormat, "taxon %d out of range 1..%d", t, n)
			}
		}
		return nil
	}
	if err := valid(data.Hidden); err != nil {
		return nil, nil, fmt.Errorf("hidden: %w", err)
	}
	sys.Hidden = taxa.NewSet(data.Hidden...)
	for _, t := range data.Hidden {
		_ = tx.Hide(tx.Label(t))
	}
	for i, sp := range data.Splits {
		if err := valid(sp.Side); err != nil {
			return nil, nil, fmt.Errorf("split %d: %w", i+1, err)
		}
		sys.Add(taxa.NewSet(sp.Side...), sp.Weight, sp.Confidence)
		sys.Splits[len(sys.Splits)-1].Label = sp.Label
	}
	return sys, tx, nil
}

// ExportSystem writes sys as JSON to the file at path.
func ExportSystem(sys *splits.System, tx *taxa.Taxa, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSystem(f, sys, tx)
}

package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/splits"
	"github.com/matzehuels/zclosure/pkg/taxa"
)

// WriteNexus writes the taxon table and sys as NEXUS TAXA and SPLITS blocks.
// Each matrix row lists the split's size, weight, confidence and the taxa of
// its stored side.
func WriteNexus(w io.Writer, sys *splits.System, tx *taxa.Taxa) error {
	if tx.Len() != sys.NTax {
		return zerrors.New(zerrors.ErrCodeInternal, "taxon table has %d taxa, system has %d", tx.Len(), sys.NTax)
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "#nexus")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "BEGIN Taxa;")
	fmt.Fprintf(bw, "DIMENSIONS ntax=%d;\n", tx.Len())
	fmt.Fprintln(bw, "TAXLABELS")
	for i := 1; i <= tx.Len(); i++ {
		fmt.Fprintf(bw, "[%d] '%s'\n", i, tx.Label(i))
	}
	fmt.Fprintln(bw, ";")
	fmt.Fprintln(bw, "END; [Taxa]")
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "BEGIN Splits;")
	fmt.Fprintf(bw, "DIMENSIONS ntax=%d nsplits=%d;\n", sys.NTax, sys.Len())
	fmt.Fprintln(bw, "FORMAT labels=no weights=yes confidences=yes;")
	fmt.Fprintln(bw, "MATRIX")
	for i, sp := range sys.Splits {
		size := min(sp.Side.Len(), sys.Other(i).Len())
		members := make([]string, 0, sp.Side.Len())
		for t := range sp.Side.All() {
			members = append(members, strconv.Itoa(t))
		}
		fmt.Fprintf(bw, "[%d, size=%d] \t %s \t %s \t %s,\n", i+1, size,
			formatFloat(sp.Weight), formatFloat(sp.Confidence), strings.Join(members, " "))
	}
	fmt.Fprintln(bw, ";")
	fmt.Fprintln(bw, "END; [Splits]")
	return bw.Flush()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

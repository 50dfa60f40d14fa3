// Package lsq re-weights a split system so that the path lengths it implies
// fit a distance matrix in the least-squares sense.
//
// For each pair of taxa the implied distance is the total weight of the
// splits separating them. [Solver] fits nonnegative weights with an active
// set loop: solve, drop splits with negative weight, solve again.
package lsq

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/distance"
	"github.com/matzehuels/zclosure/pkg/splits"
)

// Fitter re-weights a split system against a distance matrix.
type Fitter interface {
	Fit(ctx context.Context, sys *splits.System, d *distance.Matrix) (*Fit, error)
}

// Fit is the outcome of a fit. System is a re-weighted copy of the input;
// confidences and labels carry over.
type Fit struct {
	System   *splits.System
	Residual float64
	Warnings []string
}

// Solver is the default [Fitter].
type Solver struct {
	// Rcond is the relative singular value cutoff for the rank. Zero means
	// 1e-10.
	Rcond float64
	// MaxCondition is the condition number above which a warning is added.
	// Zero means 1e12.
	MaxCondition float64
}

var _ Fitter = Solver{}

type pair struct{ i, j int }

// Fit solves for nonnegative split weights. Pairs missing from d are left
// out of the fit.
func (s Solver) Fit(ctx context.Context, sys *splits.System, d *distance.Matrix) (*Fit, error) {
	rcond, maxCond := s.Rcond, s.MaxCondition
	if rcond == 0 {
		rcond = 1e-10
	}
	if maxCond == 0 {
		maxCond = 1e12
	}

	out := &Fit{System: &splits.System{
		NTax:   sys.NTax,
		Hidden: sys.Hidden.Clone(),
		Splits: make([]splits.Split, len(sys.Splits)),
	}}
	copy(out.System.Splits, sys.Splits)
	if sys.Len() == 0 {
		return out, nil
	}

	members := sys.Taxa().Members()
	var (
		pairs []pair
		b     []float64
	)
	for x, i := range members {
		for _, j := range members[x+1:] {
			if v, ok := d.At(i, j); ok {
				pairs = append(pairs, pair{i, j})
				b = append(b, v)
			}
		}
	}
	if len(pairs) == 0 {
		return nil, zerrors.New(zerrors.ErrCodeInvalidInput, "least squares: distance matrix has no pairs")
	}
	target := mat.NewVecDense(len(b), b)

	active := make([]int, sys.Len())
	for k := range active {
		active[k] = k
	}
	weights := make([]float64, sys.Len())
	var warning string
	for len(active) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, zerrors.Cancelled(err, "least squares")
		}
		design := mat.NewDense(len(pairs), len(active), nil)
		for r, p := range pairs {
			for c, k := range active {
				if sys.Separates(k, p.i, p.j) {
					design.Set(r, c, 1)
				}
			}
		}

		var svd mat.SVD
		if !svd.Factorize(design, mat.SVDThin) {
			return nil, zerrors.New(zerrors.ErrCodeInternal, "least squares: factorization failed")
		}
		rank := svd.Rank(rcond)
		if rank == 0 {
			break
		}
		switch cond := svd.Cond(); {
		case rank < len(active):
			warning = fmt.Sprintf("least squares: %d of %d split weights are not determined by the distances",
				len(active)-rank, len(active))
		case cond > maxCond:
			warning = fmt.Sprintf("least squares: design matrix is ill-conditioned (condition %.3g)", cond)
		default:
			warning = ""
		}
		var x mat.VecDense
		svd.SolveVecTo(&x, target, rank)

		var keep []int
		for c, k := range active {
			if v := x.AtVec(c); v >= 0 {
				weights[k] = v
				keep = append(keep, k)
			} else {
				weights[k] = 0
			}
		}
		if len(keep) == len(active) {
			break
		}
		active = keep
	}

	if warning != "" {
		out.Warnings = append(out.Warnings, warning)
	}
	for k := range out.System.Splits {
		out.System.Splits[k].Weight = weights[k]
	}
	out.Residual = residual(out.System, pairs, b)
	return out, nil
}

func residual(sys *splits.System, pairs []pair, b []float64) float64 {
	var sum float64
	for r, p := range pairs {
		var implied float64
		for k, sp := range sys.Splits {
			if sys.Separates(k, p.i, p.j) {
				implied += sp.Weight
			}
		}
		diff := implied - b[r]
		sum += diff * diff
	}
	return sum
}

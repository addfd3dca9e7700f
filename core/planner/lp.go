package planner

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// ErrInfeasible indicates the demand target cannot be met by the
// available capacity in a slot.
var ErrInfeasible = errors.New("planner: demand infeasible for available capacity")

// solveSlot runs the simplex algorithm to split target MW across the
// substation capacities. Each variable is one substation's share,
// bounded by its capacity; the shares must sum to the target.
func solveSlot(caps []float64, target float64) ([]float64, error) {
	n := len(caps)
	c := make([]float64, n)
	for i := range c {
		c[i] = -1
	}

	g := mat.NewDense(n, n, nil)
	h := make([]float64, n)
	for i, cap := range caps {
		g.Set(i, i, 1)
		h[i] = cap
	}

	a := mat.NewDense(1, n, nil)
	for i := 0; i < n; i++ {
		a.Set(0, i, 1)
	}
	b := []float64{target}

	cStd, aStd, bStd := lp.Convert(c, g, h, a, b)
	_, sol, err := lp.Simplex(cStd, aStd, bStd, 1e-7, nil)
	if err != nil {
		return nil, ErrInfeasible
	}
	return sol[:n], nil
}

// lpSolve points to the slot solver. Tests can override it to simulate
// solver failures.
var lpSolve = solveSlot

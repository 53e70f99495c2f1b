package matrixgame

import (
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/equilibria/internal/linprog"
)

// Solution is an equilibrium of a zero-sum game.
type Solution struct {
	Profile
	// Value is the row player's equilibrium payoff.
	Value float64
}

// FindNashEquilibrium solves the zero-sum game with row payoffs m.
//
// Each player's strategy is the solution of a minimax program over the
// payoffs as seen by that player's opponent. The two programs are duals,
// so their values agree up to numerical error.
func FindNashEquilibrium(m mat.Matrix) (*Solution, error) {
	y, upper, err := solveMinimax(m)
	if err != nil {
		return nil, errors.Wrap(err, "column player")
	}

	x, negLower, err := solveMinimax(negatedTranspose(m))
	if err != nil {
		return nil, errors.Wrap(err, "row player")
	}
	lower := -negLower

	if gap := upper - lower; math.Abs(gap) > Tolerance*(1+math.Abs(lower)) {
		glog.Warningf("Zero-sum LP duality gap is %v (lower %v, upper %v)", gap, lower, upper)
	}

	return &Solution{
		Profile: Profile{Row: x, Col: y},
		Value:   lower,
	}, nil
}

// solveMinimax returns the strategy over the columns of m minimizing the
// maximum payoff over its rows, and that payoff.
//
// With payoffs shifted into [1, 2] the minimax value v is at least one,
// and w = y/v turns the problem into
//
//	maximize Σw  subject to  M'w <= 1, w >= 0
//
// whose optimum is 1/v.
func solveMinimax(m mat.Matrix) ([]float64, float64, error) {
	shifted, lo, scale := unitPayoffs(m)
	n, k := shifted.Dims()

	prob := linprog.NewProblem(k)
	prob.Maximize(ones(k))
	for i := 0; i < n; i++ {
		prob.AddConstraint(shifted.RawRowView(i), 1)
	}

	sol, err := prob.Solve()
	if err != nil {
		return nil, 0, err
	}

	total := floats.Sum(sol.X)
	if total <= 0 {
		return nil, 0, errors.Errorf("degenerate minimax solution with total weight %v", total)
	}

	strategy := cleanDistribution(sol.X)
	value := lo + (1/total-1)*scale
	return strategy, value, nil
}

// unitPayoffs returns m shifted and scaled so that every entry lies in
// [1, 2], along with the shift lo and scale such that m = lo + (m' - 1)*scale.
func unitPayoffs(m mat.Matrix) (shifted *mat.Dense, lo, scale float64) {
	shifted = mat.DenseCopyOf(m)
	lo, scale = mat.Min(shifted), payoffScale(shifted)

	shifted.Apply(func(_, _ int, v float64) float64 {
		return 1 + (v-lo)/scale
	}, shifted)
	return shifted, lo, scale
}

func ones(n int) []float64 {
	result := make([]float64, n)
	for i := range result {
		result[i] = 1
	}

	return result
}

func negatedTranspose(m mat.Matrix) *mat.Dense {
	result := mat.DenseCopyOf(m.T())
	result.Scale(-1, result)
	return result
}

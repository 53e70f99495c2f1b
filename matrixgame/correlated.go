package matrixgame

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/equilibria/internal/linprog"
)

// FindCorrelatedEquilibrium returns a joint distribution over action
// pairs, indexed [row action][column action], from which neither player
// gains by deviating from a recommended action.
//
// The weights w are only required to have total mass at most one, and the
// program maximizes that mass. Every game has a correlated equilibrium,
// so the optimum is one. The result does not depend on a choice of welfare
// criterion and any correlated equilibrium may be returned.
func FindCorrelatedEquilibrium(g *Game) (*mat.Dense, error) {
	n, k := g.Dims()
	nVar := n * k
	idx := func(i, j int) int { return i*k + j }

	prob := linprog.NewProblem(nVar)
	prob.Maximize(ones(nVar))

	// Row player recommended a, considering a deviation to b.
	rowScale := payoffScale(g.Row)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			if a == b {
				continue
			}

			row := make([]float64, nVar)
			for j := 0; j < k; j++ {
				row[idx(a, j)] = (g.Row.At(b, j) - g.Row.At(a, j)) / rowScale
			}
			prob.AddConstraint(row, 0)
		}
	}

	// Column player recommended a, considering a deviation to b.
	colScale := payoffScale(g.Col)
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			if a == b {
				continue
			}

			row := make([]float64, nVar)
			for i := 0; i < n; i++ {
				row[idx(i, a)] = (g.Col.At(i, b) - g.Col.At(i, a)) / colScale
			}
			prob.AddConstraint(row, 0)
		}
	}

	prob.AddConstraint(ones(nVar), 1)

	sol, err := prob.Solve()
	if err != nil {
		return nil, errors.Wrap(err, "correlated equilibrium")
	}

	if sol.Value < 1-Tolerance {
		return nil, errors.Wrapf(ErrNoSolution, "correlated equilibrium has total mass %v", sol.Value)
	}

	return mat.NewDense(n, k, cleanDistribution(sol.X)), nil
}

// payoffScale is the range of m, or one if m is constant.
func payoffScale(m mat.Matrix) float64 {
	if scale := mat.Max(m) - mat.Min(m); scale > 0 {
		return scale
	}

	return 1
}

// CorrelatedRegrets returns, for each player, the largest gain available
// from deviating after any recommendation of the joint distribution.
// Both are <= 0 (up to round-off) for a correlated equilibrium.
func CorrelatedRegrets(g *Game, joint mat.Matrix) (row, col float64, err error) {
	n, k := g.Dims()
	jr, jc := joint.Dims()
	if jr != n || jc != k {
		return 0, 0, errors.Wrapf(ErrShapeMismatch, "joint distribution is %dx%d, game is %dx%d",
			jr, jc, n, k)
	}

	row, col = 0, 0
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			gain := 0.0
			for j := 0; j < k; j++ {
				gain += joint.At(a, j) * (g.Row.At(b, j) - g.Row.At(a, j))
			}
			if gain > row {
				row = gain
			}
		}
	}

	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			gain := 0.0
			for i := 0; i < n; i++ {
				gain += joint.At(i, a) * (g.Col.At(i, b) - g.Col.At(i, a))
			}
			if gain > col {
				col = gain
			}
		}
	}

	return row, col, nil
}

package matrixgame

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/equilibria/internal/linprog"
)

// dominanceMargin is the smallest payoff advantage, against every
// opponent action and relative to the range of payoffs, for which
// domination is considered strict.
const dominanceMargin = 1e-7

// FindStrictlyDominated returns the actions (rows of m) that are strictly
// dominated by another pure action or by a mixture over the other actions,
// in ascending order. For the column player pass the transpose of the
// column player's payoffs.
func FindStrictlyDominated(m mat.Matrix) ([]int, error) {
	n, _ := m.Dims()
	var result []int
	for a := 0; a < n; a++ {
		dominated, err := isStrictlyDominated(m, a)
		if err != nil {
			return nil, errors.Wrapf(err, "checking action %d", a)
		}

		if dominated {
			result = append(result, a)
		}
	}

	return result, nil
}

func isStrictlyDominated(m mat.Matrix, a int) (bool, error) {
	n, k := m.Dims()
	if n < 2 {
		return false, nil
	}

	if isPurelyDominated(m, a) {
		return true, nil
	}

	// Action a is strictly dominated exactly when no opponent strategy
	// makes it a best response. With payoffs shifted into [1, 2] that
	// search is
	//
	//	maximize M'[a]·w  subject to  M'[b]·w <= 1 for all b != a, w >= 0
	//
	// and a is undominated if and only if the optimum reaches one.
	shifted, _, _ := unitPayoffs(m)
	prob := linprog.NewProblem(k)
	prob.Maximize(shifted.RawRowView(a))
	for b := 0; b < n; b++ {
		if b != a {
			prob.AddConstraint(shifted.RawRowView(b), 1)
		}
	}

	sol, err := prob.Solve()
	if err != nil {
		return false, err
	}

	return sol.Value < 1-dominanceMargin, nil
}

func isPurelyDominated(m mat.Matrix, a int) bool {
	n, k := m.Dims()
	for b := 0; b < n; b++ {
		if b == a {
			continue
		}

		dominates := true
		for j := 0; j < k; j++ {
			if m.At(b, j) <= m.At(a, j)+dominanceMargin {
				dominates = false
				break
			}
		}

		if dominates {
			return true
		}
	}

	return false
}

// Reduction is the result of iterated removal of strictly dominated actions.
type Reduction struct {
	// Game is the reduced game.
	Game *Game
	// RowActions are the surviving row actions as indices into the original game, ascending.
	RowActions []int
	// ColActions are the surviving column actions as indices into the original game, ascending.
	ColActions []int
}

// IteratedRemoval repeatedly removes strictly dominated actions of either
// player until neither player has one. Iterated strict dominance is order
// independent, so the surviving actions do not depend on which dominated
// action is removed first.
func IteratedRemoval(g *Game) (*Reduction, error) {
	n, m := g.Dims()
	rows := identity(n)
	cols := identity(m)
	current := g.Restrict(rows, cols)
	for round := 1; ; round++ {
		rowDominated, err := FindStrictlyDominated(current.Row)
		if err != nil {
			return nil, errors.Wrap(err, "row player")
		}

		colDominated, err := FindStrictlyDominated(current.Col.T())
		if err != nil {
			return nil, errors.Wrap(err, "column player")
		}

		if len(rowDominated) == 0 && len(colDominated) == 0 {
			break
		}

		// Remove one player's actions per round so that the other player's
		// dominance is re-derived on the reduced game.
		if len(rowDominated) > 0 {
			rows = removeIndices(rows, rowDominated)
		} else {
			cols = removeIndices(cols, colDominated)
		}

		glog.V(2).Infof("Round %d: %d row and %d column actions remain", round, len(rows), len(cols))
		current = g.Restrict(rows, cols)
	}

	return &Reduction{
		Game:       current,
		RowActions: rows,
		ColActions: cols,
	}, nil
}

func identity(n int) []int {
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	return result
}

// removeIndices removes the given positions (ascending) from actions.
func removeIndices(actions []int, positions []int) []int {
	result := make([]int, 0, len(actions)-len(positions))
	next := 0
	for i, a := range actions {
		if next < len(positions) && positions[next] == i {
			next++
			continue
		}
		result = append(result, a)
	}

	return result
}

package matrixgame

import (
	"math/rand"
	"sort"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Round is one iteration of the double oracle algorithm.
type Round struct {
	// Profile is the restricted game's equilibrium, embedded in the full game.
	Profile
	// RowSupport and ColSupport are the actions of the restricted game, ascending.
	RowSupport []int
	ColSupport []int
	// LowerBound is the value the row strategy guarantees against every column action.
	LowerBound float64
	// UpperBound is the value of the row player's best response to the column strategy.
	UpperBound float64
}

// Gap returns the difference between the bounds on the game value.
func (r Round) Gap() float64 {
	return r.UpperBound - r.LowerBound
}

// DoubleOracle solves the zero-sum game with row payoffs m by growing a
// restricted game, starting from one randomly chosen action per player.
//
// Each round the restricted game is solved and both players' best
// responses over all of their actions are computed. The algorithm stops
// when the gap between the bounds on the game value is below eps or when
// neither best response adds an action to the restricted game. The rounds
// are returned in order; the last profile's exploitability is below eps
// when the gap criterion fired.
func DoubleOracle(m mat.Matrix, eps float64, rng *rand.Rand) ([]Round, error) {
	if eps <= 0 {
		return nil, errors.Errorf("eps must be positive, got %v", eps)
	}

	n, k := m.Dims()
	rowActions := []int{rng.Intn(n)}
	colActions := []int{rng.Intn(k)}
	negated := negatedTranspose(m)

	var rounds []Round
	for {
		restricted := submatrix(m, rowActions, colActions)
		sol, err := FindNashEquilibrium(restricted)
		if err != nil {
			return rounds, errors.Wrapf(err, "round %d", len(rounds)+1)
		}

		x := embed(sol.Row, rowActions, n)
		y := embed(sol.Col, colActions, k)
		rowBR := bestResponse(actionValues(m, y), n)
		colBR := bestResponse(actionValues(negated, x), k)

		round := Round{
			Profile:    Profile{Row: x, Col: y},
			RowSupport: append([]int(nil), rowActions...),
			ColSupport: append([]int(nil), colActions...),
			LowerBound: -colBR.Value,
			UpperBound: rowBR.Value,
		}
		rounds = append(rounds, round)
		glog.V(1).Infof("Round %d: %d row actions, %d column actions, value in [%v, %v]",
			len(rounds), len(rowActions), len(colActions), round.LowerBound, round.UpperBound)

		if round.Gap() < eps {
			break
		}

		var rowAdded, colAdded bool
		rowActions, rowAdded = insertAction(rowActions, rowBR.Action)
		colActions, colAdded = insertAction(colActions, colBR.Action)
		if !rowAdded && !colAdded {
			break
		}
	}

	return rounds, nil
}

// embed expands a strategy over the given actions to all n actions.
func embed(s []float64, actions []int, n int) []float64 {
	result := make([]float64, n)
	for i, a := range actions {
		result[a] = s[i]
	}
	return result
}

// insertAction adds a to the sorted actions if it is not already present.
func insertAction(actions []int, a int) ([]int, bool) {
	i := sort.SearchInts(actions, a)
	if i < len(actions) && actions[i] == a {
		return actions, false
	}

	actions = append(actions, 0)
	copy(actions[i+1:], actions[i:])
	actions[i] = a
	return actions, true
}

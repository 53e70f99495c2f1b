package efg

import (
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/equilibria/internal/linprog"
	"github.com/timpalpant/equilibria/matrixgame"
)

// ErrNotZeroSum is returned by solvers that require a zero-sum game.
var ErrNotZeroSum = errors.New("game is not zero-sum")

// SequenceFormSolution is an equilibrium of a zero-sum game in sequence form.
type SequenceFormSolution struct {
	// Plans are the realization plans of players 0 and 1.
	Plans [2][]float64
	// Value is the expected payoff of player 0.
	Value float64
}

// FindNashEquilibriumSequenceForm solves the zero-sum game g in sequence
// form. Each player's realization plan comes from its own maximin program,
// in which the opponent's best response is replaced by the dual of the
// opponent's realization plan polytope.
func FindNashEquilibriumSequenceForm(g *Game) (*SequenceFormSolution, error) {
	sf := ConvertToSequenceForm(g)
	if !isZeroSum(sf) {
		return nil, ErrNotZeroSum
	}

	x, lower, err := solveRealizationMaximin(g, sf, 0)
	if err != nil {
		return nil, errors.Wrap(err, "player 0 program")
	}

	y, negUpper, err := solveRealizationMaximin(g, sf, 1)
	if err != nil {
		return nil, errors.Wrap(err, "player 1 program")
	}

	upper := -negUpper
	if gap := upper - lower; math.Abs(gap) > matrixgame.Tolerance*(1+math.Abs(lower)) {
		glog.Warningf("Sequence-form duality gap %v exceeds tolerance (lower %v, upper %v)", gap, lower, upper)
	}

	return &SequenceFormSolution{
		Plans: [2][]float64{x, y},
		Value: lower,
	}, nil
}

// solveRealizationMaximin returns the realization plan of player that
// maximizes its payoff guaranteed against every opponent plan, and that
// payoff.
//
// Utilities are first shifted into [1, 2], which makes every entry of the
// payoff matrix A' non-negative. With E, e the player's plan constraints
// and F, f the opponent's, the program over the plan x and the duals q of
// the opponent's constraints is
//
//	maximize    fᵀq
//	subject to  Fᵀq - A'ᵀx <= 0
//	            Ex <= e
//	            x, q >= 0
//
// Because A' >= 0 the opponent's equalities can be relaxed to Fy >= f,
// which makes q non-negative, and the player's own equalities to Ex <= e
// without changing the optimum.
func solveRealizationMaximin(g *Game, sf *SequenceForm, player int) ([]float64, float64, error) {
	opponent := 1 - player
	a := orient(shiftedPayoffs(g, sf, player), player)
	lo, scale := utilityBounds(g, player)
	self, selfRHS := sf.Constraints[player], sf.RHS[player]
	opp, oppRHS := sf.Constraints[opponent], sf.RHS[opponent]

	nSelf, nOpp := a.Dims()
	nDual, _ := opp.Dims()
	nConstraints, _ := self.Dims()
	nVar := nSelf + nDual

	prob := linprog.NewProblem(nVar)
	objective := make([]float64, nVar)
	copy(objective[nSelf:], oppRHS)
	prob.Maximize(objective)

	for j := 0; j < nOpp; j++ {
		row := make([]float64, nVar)
		for i := 0; i < nSelf; i++ {
			row[i] = -a.At(i, j)
		}
		for k := 0; k < nDual; k++ {
			row[nSelf+k] = opp.At(k, j)
		}
		prob.AddConstraint(row, 0)
	}

	for k := 0; k < nConstraints; k++ {
		row := make([]float64, nVar)
		for i := 0; i < nSelf; i++ {
			row[i] = self.At(k, i)
		}
		prob.AddConstraint(row, selfRHS[k])
	}

	sol, err := prob.Solve()
	if err != nil {
		return nil, 0, err
	}

	plan := normalizePlan(g, player, sol.X[:nSelf])
	value := lo + (sol.Value-1)*scale
	return plan, value, nil
}

// utilityBounds returns the smallest utility of player over the terminal
// nodes reachable under chance, and the range of those utilities (one if
// they are all equal).
func utilityBounds(g *Game, player int) (lo, scale float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.nodeType != TerminalNode || n.chanceReach == 0 {
			continue
		}

		lo = math.Min(lo, n.utility[player])
		hi = math.Max(hi, n.utility[player])
	}

	if math.IsInf(lo, 1) {
		return 0, 1
	}

	scale = hi - lo
	if scale == 0 {
		scale = 1
	}

	return lo, scale
}

// shiftedPayoffs returns the payoffs of player, indexed like
// sf.Payoffs, for utilities mapped to 1 + (u - lo)/scale.
func shiftedPayoffs(g *Game, sf *SequenceForm, player int) *mat.Dense {
	lo, scale := utilityBounds(g, player)
	var result mat.Dense
	result.Scale(-lo, sf.Reach)
	result.Add(&result, sf.Payoffs[player])
	result.Scale(1/scale, &result)
	result.Add(&result, sf.Reach)
	return &result
}

// orient returns m with the sequences of player on the rows.
func orient(m *mat.Dense, player int) *mat.Dense {
	if player == 0 {
		return m
	}

	return mat.DenseCopyOf(m.T())
}

// normalizePlan turns a solution of the relaxed constraints Ex <= e into a
// realization plan. Working down from the empty sequence, the extensions
// at each information set are scaled up to the mass of their parent, which
// never lowers the plan's guaranteed payoff when payoffs are non-negative.
func normalizePlan(g *Game, player int, x []float64) []float64 {
	plan := cleanPlan(append([]float64(nil), x...))
	plan[EmptySequence] = 1
	for _, is := range g.InfoSets(player) {
		total := 0.0
		for a := 0; a < is.NumActions; a++ {
			total += plan[is.Sequence(a)]
		}

		for a := 0; a < is.NumActions; a++ {
			if total > 0 {
				plan[is.Sequence(a)] *= plan[is.Parent] / total
			} else {
				plan[is.Sequence(a)] = plan[is.Parent] / float64(is.NumActions)
			}
		}
	}

	return plan
}

func isZeroSum(sf *SequenceForm) bool {
	n0, n1 := sf.Payoffs[0].Dims()
	for i := 0; i < n0; i++ {
		for j := 0; j < n1; j++ {
			if math.Abs(sf.Payoffs[0].At(i, j)+sf.Payoffs[1].At(i, j)) > matrixgame.Epsilon {
				return false
			}
		}
	}

	return true
}

// cleanPlan zeroes the round-off negatives an LP solve can leave in a
// realization plan.
func cleanPlan(plan []float64) []float64 {
	for i, v := range plan {
		if v < 0 {
			plan[i] = 0
		}
	}

	return plan
}

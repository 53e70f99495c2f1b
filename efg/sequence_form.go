package efg

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SequenceForm is the sequence-form representation of a two-player game.
//
// A realization plan x of player p satisfies Constraints[p]·x = RHS[p] and
// x >= 0. Row 0 of the constraints fixes the empty sequence's mass to one;
// row 1+i equates the mass of the sequence leading to player p's i'th
// information set with the total mass of its extensions.
type SequenceForm struct {
	// Payoffs[p] holds player p's payoffs indexed by
	// [player 0 sequence][player 1 sequence], weighted by chance.
	Payoffs [2]*mat.Dense
	// Constraints[p] has one row per information set of p plus one, and
	// one column per sequence of p.
	Constraints [2]*mat.Dense
	RHS         [2][]float64
	// Reach holds the total chance probability of the terminal nodes
	// reached by each [player 0 sequence][player 1 sequence] pair.
	Reach *mat.Dense
}

// ConvertToSequenceForm builds the sequence-form payoff matrices and
// realization plan constraints of g.
func ConvertToSequenceForm(g *Game) *SequenceForm {
	n0, n1 := g.NumSequences(0), g.NumSequences(1)
	sf := &SequenceForm{
		Payoffs: [2]*mat.Dense{
			mat.NewDense(n0, n1, nil),
			mat.NewDense(n0, n1, nil),
		},
		Reach: mat.NewDense(n0, n1, nil),
	}

	for i := range g.nodes {
		n := &g.nodes[i]
		if n.nodeType != TerminalNode || n.chanceReach == 0 {
			continue
		}

		s0, s1 := n.sequences[0], n.sequences[1]
		sf.Reach.Set(s0, s1, sf.Reach.At(s0, s1)+n.chanceReach)
		for p, payoffs := range sf.Payoffs {
			payoffs.Set(s0, s1, payoffs.At(s0, s1)+n.chanceReach*n.utility[p])
		}
	}

	for p := range sf.Constraints {
		sf.Constraints[p], sf.RHS[p] = realizationConstraints(g, p)
	}

	return sf
}

func realizationConstraints(g *Game, player int) (*mat.Dense, []float64) {
	infoSets := g.InfoSets(player)
	e := mat.NewDense(len(infoSets)+1, g.NumSequences(player), nil)
	rhs := make([]float64, len(infoSets)+1)

	e.Set(0, EmptySequence, 1)
	rhs[0] = 1
	for _, is := range infoSets {
		row := is.Index + 1
		e.Set(row, is.Parent, -1)
		for a := 0; a < is.NumActions; a++ {
			e.Set(row, is.Sequence(a), 1)
		}
	}

	return e, rhs
}

// ExpectedUtility returns both players' expected payoffs when they follow
// the realization plans x and y.
func (sf *SequenceForm) ExpectedUtility(x, y []float64) ([2]float64, error) {
	n0, n1 := sf.Payoffs[0].Dims()
	if len(x) != n0 || len(y) != n1 {
		return [2]float64{}, errors.Wrapf(ErrInvalidPlan, "plans have %d and %d entries, expected %d and %d",
			len(x), len(y), n0, n1)
	}

	yv := mat.NewVecDense(n1, y)
	var result [2]float64
	for p, payoffs := range sf.Payoffs {
		var ay mat.VecDense
		ay.MulVec(payoffs, yv)
		result[p] = floats.Dot(x, ay.RawVector().Data)
	}

	return result, nil
}

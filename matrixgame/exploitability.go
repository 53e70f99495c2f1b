package matrixgame

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Deltas are each player's incentive to deviate from a profile: the gain
// from switching to a best response while the opponent keeps playing.
type Deltas struct {
	Row float64
	Col float64
}

// Sum returns the NashConv of the deltas.
func (d Deltas) Sum() float64 {
	return d.Row + d.Col
}

// ComputeDeltas returns each player's incentive to deviate from p.
// Both deltas are non-negative up to round-off.
func ComputeDeltas(g *Game, p Profile) (Deltas, error) {
	if err := p.Validate(g); err != nil {
		return Deltas{}, err
	}

	rowValues := actionValues(g.Row, p.Col)
	colValues := actionValues(g.Col.T(), p.Row)
	return Deltas{
		Row: floats.Max(rowValues) - floats.Dot(p.Row, rowValues),
		Col: floats.Max(colValues) - floats.Dot(p.Col, colValues),
	}, nil
}

// NashConv returns the sum of both players' deltas. It is zero exactly
// when p is a Nash equilibrium.
func NashConv(g *Game, p Profile) (float64, error) {
	d, err := ComputeDeltas(g, p)
	if err != nil {
		return 0, err
	}

	return d.Sum(), nil
}

// Exploitability returns NashConv / 2. In a zero-sum game this is the
// average amount a best-responding opponent wins against each player's
// strategy; the same scalar is reported for general-sum games, where the
// per-player values are available from ComputeDeltas.
func Exploitability(g *Game, p Profile) (float64, error) {
	nc, err := NashConv(g, p)
	if err != nil {
		return 0, err
	}

	return nc / 2, nil
}

// ExploitabilitySequence returns the exploitability of each profile,
// e.g. of the average strategies produced by an iterative algorithm.
func ExploitabilitySequence(g *Game, profiles []Profile) ([]float64, error) {
	result := make([]float64, len(profiles))
	for i, p := range profiles {
		e, err := Exploitability(g, p)
		if err != nil {
			return nil, errors.Wrapf(err, "profile %d", i)
		}
		result[i] = e
	}

	return result, nil
}
